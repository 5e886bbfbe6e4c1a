package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

type FetchService struct {
	db         *storage.DB
	connector  MailConnector
	rawMailDir string

	// Sender address fragments to accept; empty accepts everything.
	supplierSenders []string
}

type FetchResult struct {
	Fetched  int
	Stored   int
	Filtered int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector, supplierSenders []string) *FetchService {
	return &FetchService{
		db:              db,
		connector:       connector,
		rawMailDir:      rawMailDir,
		supplierSenders: supplierSenders,
	}
}

// FetchAndStore pulls up to max messages from the label and lands the
// ones sent by a known supplier address.
func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		if !s.fromSupplier(msg) {
			result.Filtered++
			continue
		}
		if _, err := s.storeMessage(msg); err != nil {
			return FetchResult{}, err
		}
		result.Stored++
	}

	return result, nil
}

// storeMessage writes the raw message content-addressed by its sha256
// and upserts the emails row pointing at it. Refetching a message
// neither duplicates the file nor the row.
func (s *FetchService) storeMessage(msg internal.FetchedMailMessage) (internal.EmailRow, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.EmailRow{}, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.EmailRow{}, err
		}
	}

	return s.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}

func (s *FetchService) fromSupplier(msg internal.FetchedMailMessage) bool {
	if len(s.supplierSenders) == 0 {
		return true
	}
	from := strings.ToLower(msg.From)
	for _, fragment := range s.supplierSenders {
		if strings.Contains(from, strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
