package canonical

import (
	"strings"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
)

// ApplyCrossReference left-joins the merged table against the static
// cross-reference entries on (Supplier, Product, Terminal) =
// (Supplier, Product Description, Terminal (Old)). The canonical side
// is authoritative: every input row appears in the output exactly
// once, with nil enrichment fields when no reference entry matches.
func ApplyCrossReference(rows []internal.PriceRow, entries []internal.CrossRefEntry) []internal.EnrichedPriceRow {
	index := make(map[string]internal.CrossRefEntry, len(entries))
	for _, e := range entries {
		index[joinKey(e.Supplier, e.ProductDescription, e.TerminalOld)] = e
	}

	out := make([]internal.EnrichedPriceRow, 0, len(rows))
	for _, row := range rows {
		enriched := internal.EnrichedPriceRow{PriceRow: row}
		if row.Product != nil {
			if e, ok := index[joinKey(row.Supplier, *row.Product, row.Terminal)]; ok {
				enriched.SupplyArea = optional(e.SupplyArea)
				enriched.ProductCode = optional(e.ProductCode)
				enriched.TerminalNew = optional(e.TerminalNew)
				enriched.ProductGroup = optional(e.ProductGroup)
				enriched.AlternateAccount = optional(e.AlternateAccount)
			}
		}
		out = append(out, enriched)
	}
	return out
}

func joinKey(supplier, product, terminal string) string {
	return strings.Join([]string{supplier, product, terminal}, "\x1f")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
