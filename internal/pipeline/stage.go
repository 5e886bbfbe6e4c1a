// Package pipeline drives the two processing stages: landing fetched
// emails into per-vendor staging tables, and running the canonical
// normalization over everything staged.
package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/staging"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

type StagingService struct {
	db    *storage.DB
	cfg   config.Config
	store *staging.Store
}

func NewStagingService(db *storage.DB, cfg config.Config) *StagingService {
	return &StagingService{db: db, cfg: cfg, store: staging.NewStore(cfg.StagingDir)}
}

type StageResult struct {
	Staged  int
	Skipped int
	Rows    int
}

// StagePending routes fetched emails to their vendor and appends the
// extracted tables to that vendor's master file. Emails from unknown
// senders are marked skipped. A broken email marks itself failed and
// does not stop the batch.
func (s *StagingService) StagePending(limit int) (StageResult, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return StageResult{}, err
	}

	var result StageResult
	for _, email := range pending {
		rows, err := s.stageEmail(email)
		if err != nil {
			fmt.Printf("stage: email %d failed: %v\n", email.ID, err)
			_ = s.db.UpdateEmailStatus(email.ID, "failed")
			continue
		}
		if rows < 0 {
			result.Skipped++
			continue
		}
		result.Staged++
		result.Rows += rows
	}
	return result, nil
}

// stageEmail returns -1 when the email does not belong to any vendor.
func (s *StagingService) stageEmail(email internal.EmailRow) (int, error) {
	vendor, known := staging.DetectVendor(email.Sender, email.Subject)
	if !known {
		_ = s.db.UpdateEmailStatus(email.ID, "skipped")
		return -1, nil
	}

	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return 0, err
	}

	extraction, err := staging.ExtractFromEmailRaw(raw, vendor == internal.VendorOPIS)
	if err != nil {
		return 0, err
	}

	rows := 0
	for _, t := range extraction.Tables {
		added, err := s.store.Append(vendor, t.Table)
		if err != nil {
			return 0, err
		}
		rows += added
	}

	if err := s.db.SetEmailVendor(email.ID, vendor); err != nil {
		return 0, err
	}
	if err := s.db.UpdateEmailStatus(email.ID, "staged"); err != nil {
		return 0, err
	}
	return rows, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
