package crossref

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

const lastSyncKey = "crossref.last_sync"

// SyncService refreshes the local cross-reference CSV from its remote
// export URL and records sync timestamps in metadata.
type SyncService struct {
	db         *storage.DB
	cfg        config.Config
	httpClient *http.Client
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{
		db:         db,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CrossRefTimeoutMs) * time.Millisecond},
	}
}

// Sync downloads the cross-reference export, replaces the local copy,
// and returns the parsed entries. With no URL configured it falls back
// to whatever is already on disk.
func (s *SyncService) Sync(ctx context.Context) ([]internal.CrossRefEntry, error) {
	if strings.TrimSpace(s.cfg.CrossRefURL) == "" {
		return Load(s.cfg.CrossRefPath)
	}

	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.CrossRefPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.cfg.CrossRefPath, body, 0o644); err != nil {
		return nil, err
	}
	if s.db != nil {
		_ = s.db.SetMetadata(lastSyncKey, time.Now().UTC().Format(time.RFC3339))
	}

	return Load(s.cfg.CrossRefPath)
}

// SyncIfStale refreshes only when the last recorded sync is older than
// maxAge, otherwise loads the local copy.
func (s *SyncService) SyncIfStale(ctx context.Context, maxAge time.Duration) ([]internal.CrossRefEntry, error) {
	if s.db != nil {
		last, err := s.db.GetMetadata(lastSyncKey)
		if err != nil {
			return nil, err
		}
		if last != nil {
			if parsed, err := time.Parse(time.RFC3339, *last); err == nil && time.Since(parsed) < maxAge {
				return Load(s.cfg.CrossRefPath)
			}
		}
	}
	return s.Sync(ctx)
}

func (s *SyncService) fetch(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.CrossRefURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("crossref status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("crossref fetch error: status=%d", resp.StatusCode)
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("crossref fetch failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
