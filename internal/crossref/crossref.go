// Package crossref loads and refreshes the static terminal/product
// cross-reference table used to enrich the merged price table with
// normalized business codes.
package crossref

import (
	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
)

// Column headers of the cross-reference workbook export.
const (
	colSupplier           = "Supplier"
	colProductDescription = "Product Description"
	colTerminalOld        = "Terminal (Old)"
	colSupplyArea         = "Supply Area"
	colProductCode        = "Product Code"
	colTerminalNew        = "Terminal (New)"
	colProductGroup       = "Product Group"
	colAlternateAccount   = "Alternate Supplier/Account"
)

// Load reads the cross-reference CSV from disk. A missing file is not
// an error: enrichment simply has nothing to match against and every
// row passes through unenriched.
func Load(path string) ([]internal.CrossRefEntry, error) {
	t, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	return fromTable(t), nil
}

func fromTable(t *table.Table) []internal.CrossRefEntry {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.CrossRefEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		entry := internal.CrossRefEntry{
			Supplier:           t.Cell(i, colSupplier),
			ProductDescription: t.Cell(i, colProductDescription),
			TerminalOld:        t.Cell(i, colTerminalOld),
			SupplyArea:         t.Cell(i, colSupplyArea),
			ProductCode:        t.Cell(i, colProductCode),
			TerminalNew:        t.Cell(i, colTerminalNew),
			ProductGroup:       t.Cell(i, colProductGroup),
			AlternateAccount:   t.Cell(i, colAlternateAccount),
		}
		if entry.Supplier == "" && entry.ProductDescription == "" && entry.TerminalOld == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}
