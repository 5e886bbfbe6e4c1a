package canonical

import (
	"testing"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
)

func TestAllVendorsEmptyTable(t *testing.T) {
	for vendor, normalize := range Registry {
		if rows := normalize(&table.Table{}); len(rows) != 0 {
			t.Fatalf("%s: empty table produced %d rows", vendor, len(rows))
		}
		if rows := normalize(nil); len(rows) != 0 {
			t.Fatalf("%s: nil table produced %d rows", vendor, len(rows))
		}
	}
}

func TestRegistryCoversAllVendors(t *testing.T) {
	for _, vendor := range internal.AllVendors {
		if _, ok := Registry[vendor]; !ok {
			t.Fatalf("no normalizer registered for %s", vendor)
		}
	}
	if len(Registry) != len(internal.AllVendors) {
		t.Fatalf("registry has %d entries, want %d", len(Registry), len(internal.AllVendors))
	}
}

func TestBBEnergyProductMapping(t *testing.T) {
	tbl := table.New("date", "time", "location", "product", "price")
	tbl.Append("01/15/24", "06:00", "Las Vegas-McCarran", "ULSD", "2.50")
	tbl.Append("01/15/24", "06:00", "Las Vegas-McCarran", "MYSTERY", "2.60")

	rows := NormalizeBBEnergy(tbl)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Product == nil || *rows[0].Product != "DSL#2" {
		t.Fatalf("ULSD mapped to %v, want DSL#2", rows[0].Product)
	}
	if rows[1].Product != nil {
		t.Fatalf("unmapped code should yield null Product, got %v", *rows[1].Product)
	}
	if rows[0].Supplier != "BBEnergy" || rows[0].Brand != "Unbranded" {
		t.Fatalf("identity fields: %+v", rows[0])
	}
}

func TestBBEnergyLocationSplit(t *testing.T) {
	tbl := table.New("date", "time", "location", "product", "price")
	tbl.Append("01/15/24", "06:00", "Las Vegas-McCarran-Extra", "ULSD", "2.50")
	tbl.Append("01/15/24", "06:00", "Phoenix", "ULSD", "2.50")

	rows := NormalizeBBEnergy(tbl)
	if rows[0].Location != "Las Vegas" || rows[0].Terminal != "McCarran" {
		t.Fatalf("split = %q/%q", rows[0].Location, rows[0].Terminal)
	}
	// No delimiter: everything is the location, terminal is empty.
	if rows[1].Location != "Phoenix" || rows[1].Terminal != "" {
		t.Fatalf("undelimited split = %q/%q", rows[1].Location, rows[1].Terminal)
	}
}

func TestBigWestNoTerminal(t *testing.T) {
	tbl := table.New("date", "time", "location", "product", "price")
	tbl.Append("2024-01-15", "14:30", "Boise", "UNL E10", "2.31")

	rows := NormalizeBigWest(tbl)
	if len(rows) != 1 || rows[0].Terminal != "" || rows[0].Location != "Boise" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Datetime == nil || rows[0].Datetime.Format("2006-01-02 15:04:05") != "2024-01-15 14:30:00" {
		t.Fatalf("datetime = %v", rows[0].Datetime)
	}
}

func TestBradHallForcedEmptyLocation(t *testing.T) {
	tbl := table.New("date", "time", "location", "product", "price")
	tbl.Append("01/15/2024", "06:00", "Somewhere", "DSL", "2.80")

	rows := NormalizeBradHall(tbl)
	if rows[0].Location != "" || rows[0].Terminal != "" {
		t.Fatalf("bradhall must force empty location/terminal: %+v", rows[0])
	}
}

func TestBradHallToleratesPDFVariantShape(t *testing.T) {
	tbl := table.New("date", "time", "terminal_code", "marketing_area", "product", "price")
	tbl.Append("01/15/2024", "06:00", "SLC01", "Salt Lake", "DSL", "2.80")

	rows := NormalizeBradHall(tbl)
	if len(rows) != 1 || rows[0].Price == nil || *rows[0].Price != 2.80 {
		t.Fatalf("pdf-variant shape: %+v", rows)
	}
}

func TestChevronSingleTimestampColumn(t *testing.T) {
	tbl := table.New("Effective_Date", "Terminal", "Product", "Price")
	tbl.Append("2024-02-01 18:00:00", "Vegas Rack", "CARB ULSD", "2.95")

	rows := NormalizeChevron(tbl)
	if rows[0].Date != "2024-02-01" || rows[0].Time != "18:00:00" {
		t.Fatalf("date/time = %q/%q", rows[0].Date, rows[0].Time)
	}
	if rows[0].Location != "" {
		t.Fatalf("chevron location must be empty")
	}
}

func TestKotacoSupplierSynthesis(t *testing.T) {
	tbl := table.New("Effective_Date", "Supplier", "Terminal", "Product", "Price")
	tbl.Append("2024-02-01 06:00:00", "Pilot", "North Rack", "ULSD", "2.70")

	rows := NormalizeKotaco(tbl)
	if rows[0].Supplier != "Kotaco-Pilot" {
		t.Fatalf("supplier = %q", rows[0].Supplier)
	}
	if rows[0].Location != "" {
		t.Fatalf("kotaco location must be empty")
	}
}

func TestMusketCombinedDatetimeAndSplit(t *testing.T) {
	tbl := table.New("effective_datetime", "location", "product", "price")
	tbl.Append("2024-03-10 00:01:00", "Las Vegas-Nellis", "87 E10", "2.21")

	rows := NormalizeMusket(tbl)
	if rows[0].Supplier != "Musket" || rows[0].Location != "Las Vegas" || rows[0].Terminal != "Nellis" {
		t.Fatalf("row = %+v", rows[0])
	}
	if rows[0].Time != "00:01:00" {
		t.Fatalf("time = %q", rows[0].Time)
	}
}

func TestSinclairSupplierAndBrandFromSource(t *testing.T) {
	tbl := table.New("effective_datetime", "location", "product", "price", "supplier", "brand")
	tbl.Append("2024-03-10 05:00:00", "Salt Lake-North", "DSL#2", "2.51", "Sinclair", "Branded")

	rows := NormalizeSinclair(tbl)
	if rows[0].Supplier != "Sinclair" || rows[0].Brand != "Branded" {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestOffenBoilerplateRemovalAndExplicitFormat(t *testing.T) {
	tbl := table.New("Effective", "Terminal", "Product", "Price")
	tbl.Append("04/15/2024 6:00 PM - 04/16/2024 6:00 PM", "Denver East", "LF DSL", "2.77")
	tbl.Append("04/15/2024 6:00 PM - 04/16/2024 6:00 PM", "Terms Net 10 Days via EFT or ACH", "", "")
	tbl.Append("04/15/2024 6:00 PM - 04/16/2024 6:00 PM", "Above prices are subject to midday changes and do not inculde any tax or freight", "", "")

	rows := NormalizeOffen(tbl)
	if len(rows) != 1 {
		t.Fatalf("footer rows not dropped: %d rows", len(rows))
	}
	if rows[0].Datetime == nil || rows[0].Datetime.Format("2006-01-02 15:04:05") != "2024-04-15 18:00:00" {
		t.Fatalf("datetime = %v", rows[0].Datetime)
	}
}

func TestRebelBoilerplateRemoval(t *testing.T) {
	tbl := table.New("Effective Datetime", "Terminal", "Product", "Price")
	tbl.Append("04/15/2024- 6:00 PM", "Las Vegas", "ULSD", "2.61")
	tbl.Append("04/15/2024- 6:00 PM", "Cell: (725) 377-3598", "", "")
	tbl.Append("04/15/2024- 6:00 PM", "UT", "", "")

	rows := NormalizeRebel(tbl)
	if len(rows) != 1 {
		t.Fatalf("noise rows not dropped: %d rows", len(rows))
	}
	if rows[0].Date != "2024-04-15" || rows[0].Time != "00:00:00" {
		t.Fatalf("date/time = %q/%q", rows[0].Date, rows[0].Time)
	}
}

func TestShellTerminalNameSplit(t *testing.T) {
	tbl := table.New("Effective Date", "Terminal Name", "Product Name", "Price")
	tbl.Append("2024-05-01 17:00:00", "Las Vegas-SigRack", "FuelSave ULSD", "2.8450")

	rows := NormalizeShell(tbl)
	if rows[0].Location != "Las Vegas" || rows[0].Terminal != "SigRack" {
		t.Fatalf("split = %q/%q", rows[0].Location, rows[0].Terminal)
	}
	if rows[0].Product == nil || *rows[0].Product != "FuelSave ULSD" {
		t.Fatalf("product = %v", rows[0].Product)
	}
}

func TestValeroPriceScalingAndTokenSplit(t *testing.T) {
	tbl := table.New("effective_datetime", "terminal", "product", "price")
	tbl.Append("2024-06-01 00:00:00", "VLO SLC - Salt Lake City UT", "ULSD", "350")

	rows := NormalizeValero(tbl)
	if rows[0].Price == nil || *rows[0].Price != 3.50 {
		t.Fatalf("cents scaling: price = %v", rows[0].Price)
	}
	if rows[0].Terminal != "VLO SLC" {
		t.Fatalf("terminal = %q", rows[0].Terminal)
	}
	if rows[0].Location != "Salt Lake City" {
		t.Fatalf("location = %q", rows[0].Location)
	}
}

func TestValeroShortTokenCountDegrades(t *testing.T) {
	tbl := table.New("effective_datetime", "terminal", "product", "price")
	tbl.Append("2024-06-01 00:00:00", "VLO", "ULSD", "350")

	rows := NormalizeValero(tbl)
	if rows[0].Terminal != "VLO" || rows[0].Location != "" {
		t.Fatalf("short input must degrade, got %q/%q", rows[0].Terminal, rows[0].Location)
	}
}

func TestMalformedDateDegradesToNull(t *testing.T) {
	tbl := table.New("date", "time", "location", "product", "price")
	tbl.Append("not-a-date", "06:00", "Boise", "UNL", "2.31")

	rows := NormalizeBigWest(tbl)
	if len(rows) != 1 {
		t.Fatalf("malformed date must not drop the row")
	}
	if rows[0].Datetime != nil || rows[0].Date != "" {
		t.Fatalf("malformed date must null datetime fields: %+v", rows[0])
	}
	if rows[0].Price == nil {
		t.Fatalf("price should survive a bad date")
	}
}
