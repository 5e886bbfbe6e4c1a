package staging

import "testing"

// Columns are fixed-width: supplier 0-11, type 11-13, brand 13-18,
// terminal 18-28, then the positional value columns from offset 28.
const sampleOpisReport = `LAS VEGAS NV
**OPIS NET TERMINAL UNL/MID/PRE PRICES**
Supplier     Brand Terminal   Price   Move   Price   Move   Price   Move   Eff
--------     ----- --------   -----   ----   -----   ----   -----   ----   ---
Sinclair   b SINC Las Vegas 2.2000  17:30  2.3000  --     2.4000  --     04/15 17:30
TMNL AVG                    2.2100  --     2.3100  --     2.4100  --     04/15
`

func TestParseOPISReportSections(t *testing.T) {
	tbl := ParseOPISReport(sampleOpisReport)
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d", tbl.Len())
	}

	if got := tbl.Cell(0, "supplier"); got != "Sinclair" {
		t.Fatalf("supplier = %q", got)
	}
	if got := tbl.Cell(0, "type"); got != "b" {
		t.Fatalf("type = %q", got)
	}
	if got := tbl.Cell(0, "terminal"); got != "Las Vegas" {
		t.Fatalf("terminal = %q", got)
	}
	if got := tbl.Cell(0, "section"); got != "**OPIS NET TERMINAL UNL/MID/PRE PRICES**" {
		t.Fatalf("section = %q", got)
	}
	if got := tbl.Cell(0, "marketing_area"); got != "LAS VEGAS NV" {
		t.Fatalf("marketing area = %q", got)
	}
	if got := tbl.Cell(0, "price1"); got != "2.2000" {
		t.Fatalf("price1 = %q", got)
	}
	if got := tbl.Cell(0, "move1"); got != "17:30" {
		t.Fatalf("move1 = %q", got)
	}
	if got := tbl.Cell(0, "move2"); got != "" {
		t.Fatalf("-- placeholder must read as blank, got %q", got)
	}
	if got := tbl.Cell(0, "date"); got != "04/15" {
		t.Fatalf("date = %q", got)
	}
	if got := tbl.Cell(0, "time"); got != "17:30" {
		t.Fatalf("time = %q", got)
	}
}

func TestParseOPISReportSummaryLine(t *testing.T) {
	tbl := ParseOPISReport(sampleOpisReport)
	if got := tbl.Cell(1, "supplier"); got != "TMNL AVG" {
		t.Fatalf("summary supplier = %q", got)
	}
	if got := tbl.Cell(1, "type"); got != "" {
		t.Fatalf("summary lines carry no type code, got %q", got)
	}
}

func TestParseOPISReportEmpty(t *testing.T) {
	if tbl := ParseOPISReport(""); !tbl.IsEmpty() {
		t.Fatalf("empty report must yield an empty table")
	}
	if tbl := ParseOPISReport("no sections here\njust text\n"); !tbl.IsEmpty() {
		t.Fatalf("sectionless text must yield an empty table")
	}
}
