// Package listener runs the fetch-stage-normalize-export loop on an
// interval.
package listener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/connectors"
	gmailconnector "github.com/jdlax00/jenkins-oil-pricing-db/internal/connectors/gmail"
	imapconnector "github.com/jdlax00/jenkins-oil-pricing-db/internal/connectors/imap"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/pipeline"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector, s.cfg.SupplierSenders)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	stager := pipeline.NewStagingService(s.db, s.cfg)
	stageResult, err := stager.StagePending(s.cfg.ListenerStageBatch)
	if err != nil {
		return err
	}

	runResult, err := pipeline.NewService(s.db, s.cfg).Run(ctx)
	if errors.Is(err, pipeline.ErrNoVendorData) {
		fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d staged=%d (nothing to normalize)\n",
			provider, fetchResult.Fetched, fetchResult.Stored, stageResult.Staged)
		return nil
	}
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoExport {
		rows, err := s.db.ListCanonicalPrices(runResult.RunID)
		if err != nil {
			return err
		}
		outputPath := pipeline.TimestampedXLSXPath(s.cfg.OutputDir, time.Now().UTC())
		if err := pipeline.ExportXLSX(rows, outputPath); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d staged=%d merged=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, stageResult.Staged, runResult.MergedRows)
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
