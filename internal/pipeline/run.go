package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/canonical"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/crossref"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/staging"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

// ErrNoVendorData means every vendor's staging table was empty or
// failed to load. An all-empty run would silently publish an empty
// master table, so it is fatal instead.
var ErrNoVendorData = errors.New("no vendor data available")

// Service runs the canonical normalization over staged vendor data.
type Service struct {
	db    *storage.DB
	cfg   config.Config
	store *staging.Store
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, store: staging.NewStore(cfg.StagingDir)}
}

type RunResult struct {
	RunID      int64
	TraceID    string
	VendorRows map[internal.VendorKey]int
	MergedRows int
	OutputPath string
}

// Run loads every vendor's staging table, normalizes each through its
// rule set, merges, enriches against the cross-reference, persists the
// snapshot, and writes the canonical CSV. Vendor failures are isolated:
// a vendor whose table cannot be loaded contributes nothing. Zero rows
// across all vendors is ErrNoVendorData.
func (s *Service) Run(ctx context.Context) (RunResult, error) {
	start := time.Now()
	trace := traceID()

	vendorRows := s.normalizeAllVendors(ctx)

	tables := make([][]internal.PriceRow, 0, len(internal.AllVendors))
	counts := map[string]int{}
	total := 0
	for _, vendor := range internal.AllVendors {
		rows := vendorRows[vendor]
		counts[string(vendor)] = len(rows)
		total += len(rows)
		tables = append(tables, rows)
	}
	if total == 0 {
		return RunResult{}, ErrNoVendorData
	}

	merged := canonical.Merge(tables...)

	entries, err := crossref.Load(s.cfg.CrossRefPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("load cross-reference: %w", err)
	}
	enriched := canonical.ApplyCrossReference(merged, entries)

	counts["merged"] = len(merged)
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}

	runID, err := s.db.InsertRun(trace, counts, timings)
	if err != nil {
		return RunResult{}, err
	}
	if err := s.db.ReplaceCanonicalPrices(runID, enriched); err != nil {
		return RunResult{}, err
	}

	outputPath := filepath.Join(s.cfg.OutputDir, "canonical_master.csv")
	if err := WriteCanonicalCSV(outputPath, enriched); err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		RunID:      runID,
		TraceID:    trace,
		VendorRows: map[internal.VendorKey]int{},
		MergedRows: len(merged),
		OutputPath: outputPath,
	}
	for vendor, rows := range vendorRows {
		result.VendorRows[vendor] = len(rows)
	}
	return result, nil
}

// normalizeAllVendors loads and normalizes every vendor concurrently.
// Each vendor is independent; a load failure logs and yields nothing.
func (s *Service) normalizeAllVendors(ctx context.Context) map[internal.VendorKey][]internal.PriceRow {
	var mu sync.Mutex
	var wg sync.WaitGroup
	out := make(map[internal.VendorKey][]internal.PriceRow, len(internal.AllVendors))

	for _, vendor := range internal.AllVendors {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(vendor internal.VendorKey) {
			defer wg.Done()

			t, err := s.store.Load(vendor)
			if err != nil {
				fmt.Printf("canonical: load %s staging: %v\n", vendor, err)
				return
			}
			normalize, ok := canonical.Registry[vendor]
			if !ok {
				return
			}
			rows := normalize(t)

			mu.Lock()
			out[vendor] = rows
			mu.Unlock()
		}(vendor)
	}
	wg.Wait()

	return out
}
