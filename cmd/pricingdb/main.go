package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/connectors"
	gmailconnector "github.com/jdlax00/jenkins-oil-pricing-db/internal/connectors/gmail"
	imapconnector "github.com/jdlax00/jenkins-oil-pricing-db/internal/connectors/imap"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/crossref"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/listener"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/pipeline"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn, cfg.SupplierSenders)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d filtered=%d\n", *provider, result.Fetched, result.Stored, result.Filtered)
	case "mail:stage":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 50, "batch size")
		_ = fs.Parse(os.Args[2:])
		stager := pipeline.NewStagingService(db, cfg)
		result, err := stager.StagePending(*batch)
		must(err)
		fmt.Printf("staging done staged=%d skipped=%d rows=%d\n", result.Staged, result.Skipped, result.Rows)
	case "canonical:run":
		result, err := pipeline.NewService(db, cfg).Run(context.Background())
		must(err)
		fmt.Printf("canonical run done trace=%s merged=%d output=%s\n", result.TraceID, result.MergedRows, result.OutputPath)
	case "crossref:sync":
		svc := crossref.NewSyncService(db, cfg)
		entries, err := svc.Sync(context.Background())
		must(err)
		fmt.Printf("crossref sync done entries=%d\n", len(entries))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		runID, err := db.LatestRunID()
		must(err)
		rows, err := db.ListCanonicalPrices(runID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no canonical rows for run %d", runID))
		}
		outputPath := *out
		if strings.TrimSpace(outputPath) == "" {
			outputPath = pipeline.TimestampedXLSXPath(cfg.OutputDir, time.Now().UTC())
		}
		must(pipeline.ExportXLSX(rows, outputPath))
		fmt.Printf("exported %d rows to %s\n", len(rows), outputPath)
	case "listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: pricingdb <command>")
	fmt.Println("commands:")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:stage --batch=50")
	fmt.Println("  canonical:run")
	fmt.Println("  crossref:sync")
	fmt.Println("  export:xlsx [--out=./out/canonical.xlsx]")
	fmt.Println("  listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
