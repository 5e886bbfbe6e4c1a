package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/util"
)

// canonicalHeader is the published column order of the master table.
var canonicalHeader = []string{
	"Supplier", "Location", "Terminal", "Product", "Brand",
	"Price", "Datetime", "Date", "Time", "Change",
	"Supply Area", "Product Code", "Terminal (New)", "Product Group", "Alternate Supplier/Account",
}

// WriteCanonicalCSV renders the enriched master table. Null values
// render as empty cells.
func WriteCanonicalCSV(path string, rows []internal.EnrichedPriceRow) error {
	t := table.New(canonicalHeader...)
	for _, row := range rows {
		t.Append(
			row.Supplier,
			row.Location,
			row.Terminal,
			renderString(row.Product),
			row.Brand,
			renderFloat(row.Price),
			renderTime(row.Datetime),
			row.Date,
			row.Time,
			renderFloat(row.Change),
			renderString(row.SupplyArea),
			renderString(row.ProductCode),
			renderString(row.TerminalNew),
			renderString(row.ProductGroup),
			renderString(row.AlternateAccount),
		)
	}

	blob, err := table.WriteCSV(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

// ReadCanonicalCSV parses a canonical export back into rows.
func ReadCanonicalCSV(path string) ([]internal.EnrichedPriceRow, error) {
	t, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return nil, nil
	}

	out := make([]internal.EnrichedPriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.EnrichedPriceRow{
			PriceRow: internal.PriceRow{
				Supplier: t.Cell(i, "Supplier"),
				Location: t.Cell(i, "Location"),
				Terminal: t.Cell(i, "Terminal"),
				Brand:    t.Cell(i, "Brand"),
				Date:     t.Cell(i, "Date"),
				Time:     t.Cell(i, "Time"),
			},
		}
		row.Product = parseString(t.Cell(i, "Product"))
		row.Price = parseFloat(t.Cell(i, "Price"))
		row.Change = parseFloat(t.Cell(i, "Change"))
		row.Datetime = parseDatetime(t.Cell(i, "Datetime"))
		row.SupplyArea = parseString(t.Cell(i, "Supply Area"))
		row.ProductCode = parseString(t.Cell(i, "Product Code"))
		row.TerminalNew = parseString(t.Cell(i, "Terminal (New)"))
		row.ProductGroup = parseString(t.Cell(i, "Product Group"))
		row.AlternateAccount = parseString(t.Cell(i, "Alternate Supplier/Account"))
		out = append(out, row)
	}
	return out, nil
}

// ExportXLSX writes the enriched master table as a workbook for the
// pricing team.
func ExportXLSX(rows []internal.EnrichedPriceRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range canonicalHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Supplier)
		set(2, row.Location)
		set(3, row.Terminal)
		set(4, renderString(row.Product))
		set(5, row.Brand)
		set(6, cellFloat(row.Price))
		set(7, renderTime(row.Datetime))
		set(8, row.Date)
		set(9, row.Time)
		set(10, cellFloat(row.Change))
		set(11, renderString(row.SupplyArea))
		set(12, renderString(row.ProductCode))
		set(13, renderString(row.TerminalNew))
		set(14, renderString(row.ProductGroup))
		set(15, renderString(row.AlternateAccount))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// TimestampedXLSXPath names an export like canonical_20240415_060000.xlsx.
func TimestampedXLSXPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("canonical_%s.xlsx", now.Format("20060102_150405")))
}

func renderString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func renderFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func renderTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02 15:04:05")
}

func cellFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func parseString(cell string) *string {
	if cell == "" {
		return nil
	}
	return util.StringPtr(cell)
}

func parseFloat(cell string) *float64 {
	if cell == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseDatetime(cell string) *time.Time {
	if cell == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02 15:04:05", cell)
	if err != nil {
		return nil
	}
	return &parsed
}
