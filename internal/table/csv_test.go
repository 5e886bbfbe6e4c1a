package table

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestReadCSVCommaSeparated(t *testing.T) {
	data := []byte("product,price,location\nULSD,2.50,Las Vegas-McCarran\n87 E10,2.10,Salt Lake-North\n")
	tbl, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	if got := tbl.Cell(0, "location"); got != "Las Vegas-McCarran" {
		t.Fatalf("cell = %q", got)
	}
}

func TestReadCSVSemicolonSeparated(t *testing.T) {
	data := []byte("product;price\nULSD;2.50\n")
	tbl, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Cell(0, "price") != "2.50" {
		t.Fatalf("columns=%v row0=%v", tbl.Columns, tbl.Rows)
	}
}

func TestReadCSVCP1252(t *testing.T) {
	raw := "product,price\nDi\xe9sel,3.10\n"
	tbl, err := ReadCSV([]byte(raw))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := tbl.Cell(0, "product"); got != "Diésel" {
		t.Fatalf("decoded product = %q", got)
	}
}

func TestReadCSVNonUTF8Fallback(t *testing.T) {
	enc, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("product,price\nÿLSD,2.50\n"))
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadCSV(enc)
	if err != nil {
		t.Fatalf("fallback decode failed: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("rows = %d", tbl.Len())
	}
}

func TestReadCSVByteOrderMark(t *testing.T) {
	data := []byte("\xef\xbb\xbfproduct,price\nULSD,2.50\n")
	tbl, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Columns[0] != "product" {
		t.Fatalf("first column = %q", tbl.Columns[0])
	}
	if got := tbl.Cell(0, "product"); got != "ULSD" {
		t.Fatalf("cell = %q", got)
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\n1,2\n1,2,3,4\n")
	tbl, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Cell(0, "c") != "" {
		t.Fatalf("short row pad = %q", tbl.Cell(0, "c"))
	}
	if tbl.Cell(1, "c") != "3" {
		t.Fatalf("long row truncate = %q", tbl.Cell(1, "c"))
	}
}

func TestReadCSVEmpty(t *testing.T) {
	tbl, err := ReadCSV(nil)
	if err != nil {
		t.Fatalf("ReadCSV(nil): %v", err)
	}
	if !tbl.IsEmpty() {
		t.Fatal("expected empty table")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	src := New("Supplier", "Price")
	src.Append("Shell", "2.7110")
	src.Append("Valero", "3.50")

	data, err := WriteCSV(src)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if back.Len() != 2 || back.Cell(1, "Price") != "3.50" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestCellMissingColumn(t *testing.T) {
	tbl := New("a")
	tbl.Append("1")
	if got := tbl.Cell(0, "nope"); got != "" {
		t.Fatalf("missing column = %q", got)
	}
	if got := tbl.Cell(5, "a"); got != "" {
		t.Fatalf("out of range row = %q", got)
	}
}
