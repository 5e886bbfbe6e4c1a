package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		DBPath:       filepath.Join(dir, "pricing.db"),
		RawMailDir:   filepath.Join(dir, "raw"),
		StagingDir:   filepath.Join(dir, "staging"),
		OutputDir:    filepath.Join(dir, "out"),
		CrossRefPath: filepath.Join(dir, "crossref.csv"),
	}
}

func openTestDB(t *testing.T, cfg config.Config) *storage.DB {
	t.Helper()
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeMaster(t *testing.T, cfg config.Config, vendor internal.VendorKey, content string) {
	t.Helper()
	dir := filepath.Join(cfg.StagingDir, string(vendor))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, string(vendor)+"_historical_master.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunNoVendorData(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)

	_, err := NewService(db, cfg).Run(context.Background())
	if !errors.Is(err, ErrNoVendorData) {
		t.Fatalf("err = %v, want ErrNoVendorData", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)

	writeMaster(t, cfg, internal.VendorBBEnergy,
		"date,time,location,product,price\n"+
			"04/15/2024,06:00,Las Vegas-McCarran,ULSD,2.50\n"+
			"04/16/2024,06:00,Las Vegas-McCarran,ULSD,2.75\n")
	writeMaster(t, cfg, internal.VendorShell,
		"Effective Date,Terminal Name,Product Name,Price\n"+
			"2024-04-15 17:00:00,Las Vegas-SigRack,ULSD,2.8450\n")

	crossrefCSV := "Supplier,Product Description,Terminal (Old),Supply Area,Product Code,Terminal (New),Product Group,Alternate Supplier/Account\n" +
		"BBEnergy,DSL#2,McCarran,Vegas,D2,LVS-01,Diesel,\n"
	if err := os.WriteFile(cfg.CrossRefPath, []byte(crossrefCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := NewService(db, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.MergedRows != 3 {
		t.Fatalf("merged rows = %d", result.MergedRows)
	}
	if result.VendorRows[internal.VendorBBEnergy] != 2 || result.VendorRows[internal.VendorShell] != 1 {
		t.Fatalf("vendor rows = %+v", result.VendorRows)
	}

	rows, err := ReadCanonicalCSV(result.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("output rows = %d", len(rows))
	}

	// Sorted ascending: BBEnergy before Shell, then by datetime.
	if rows[0].Supplier != "BBEnergy" || rows[2].Supplier != "Shell" {
		t.Fatalf("sort order: %s .. %s", rows[0].Supplier, rows[2].Supplier)
	}
	if rows[0].Product == nil || *rows[0].Product != "DSL#2" {
		t.Fatalf("bbenergy product mapping lost: %v", rows[0].Product)
	}
	if rows[0].Change != nil {
		t.Fatalf("first row of group must have null Change")
	}
	if rows[1].Change == nil || *rows[1].Change != 0.25 {
		t.Fatalf("Change = %v", rows[1].Change)
	}
	if rows[0].ProductCode == nil || *rows[0].ProductCode != "D2" {
		t.Fatalf("cross-reference enrichment missing: %v", rows[0].ProductCode)
	}
	if rows[2].ProductCode != nil {
		t.Fatalf("shell rows must pass through unenriched")
	}

	// The snapshot matches the exported CSV.
	stored, err := db.ListCanonicalPrices(result.RunID)
	if err != nil {
		t.Fatalf("list snapshot: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("snapshot rows = %d", len(stored))
	}
}

func TestRunIdempotent(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)

	writeMaster(t, cfg, internal.VendorBBEnergy,
		"date,time,location,product,price\n"+
			"04/15/2024,06:00,Las Vegas-McCarran,ULSD,2.50\n")

	svc := NewService(db, cfg)
	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	firstBytes, err := os.ReadFile(first.OutputPath)
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	secondBytes, err := os.ReadFile(second.OutputPath)
	if err != nil {
		t.Fatal(err)
	}

	if string(firstBytes) != string(secondBytes) {
		t.Fatalf("re-running over unchanged staging must produce identical output")
	}
}

func TestRunIsolatesVendorFailure(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)

	writeMaster(t, cfg, internal.VendorBBEnergy,
		"date,time,location,product,price\n"+
			"04/15/2024,06:00,Las Vegas-McCarran,ULSD,2.50\n")
	// A directory where the master file should be makes that vendor
	// unreadable.
	badPath := filepath.Join(cfg.StagingDir, "shell", "shell_historical_master.csv")
	if err := os.MkdirAll(badPath, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := NewService(db, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("one broken vendor must not fail the run: %v", err)
	}
	if result.MergedRows != 1 {
		t.Fatalf("merged rows = %d", result.MergedRows)
	}
}
