package canonical

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
)

// Merge combines per-vendor canonical tables into the final table:
// concatenate, drop fully duplicate rows, sort ascending by
// (Supplier, Location, Terminal, Product, Datetime), then compute
// Change as the difference to the previous price within each
// (Supplier, Location, Terminal, Product) group. The sort order is
// load-bearing: the lagged delta reads the immediately preceding row.
//
// Missing or empty vendor tables are simply absent from the input;
// Merge itself never fails. Callers treat a zero-row result as the
// nothing-to-report condition.
func Merge(vendorTables ...[]internal.PriceRow) []internal.PriceRow {
	total := 0
	for _, rows := range vendorTables {
		total += len(rows)
	}
	combined := make([]internal.PriceRow, 0, total)
	seen := make(map[string]struct{}, total)
	for _, rows := range vendorTables {
		for _, row := range rows {
			key := rowKey(row)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			combined = append(combined, row)
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return lessRow(combined[i], combined[j])
	})

	computeChange(combined)
	return combined
}

// computeChange fills Change in place over sorted rows. Rows with a
// null Product form no group (mirroring the reference behavior of
// grouping over a null key) and keep a null Change, as does the first
// row of every group and any row where either price operand is null.
func computeChange(rows []internal.PriceRow) {
	var prevKey string
	var prevPrice *float64
	havePrev := false

	for i := range rows {
		rows[i].Change = nil
		if rows[i].Product == nil {
			havePrev = false
			continue
		}
		key := groupKey(rows[i])
		if havePrev && key == prevKey {
			if prevPrice != nil && rows[i].Price != nil {
				change := *rows[i].Price - *prevPrice
				rows[i].Change = &change
			}
		}
		prevKey = key
		prevPrice = rows[i].Price
		havePrev = true
	}
}

func groupKey(row internal.PriceRow) string {
	product := ""
	if row.Product != nil {
		product = *row.Product
	}
	return strings.Join([]string{row.Supplier, row.Location, row.Terminal, product}, "\x1f")
}

// rowKey renders every field so that fully identical rows collapse to
// one key. Change is excluded: it is derived after deduplication.
func rowKey(row internal.PriceRow) string {
	return strings.Join([]string{
		row.Supplier,
		row.Location,
		row.Terminal,
		renderNullableString(row.Product),
		row.Brand,
		renderNullableFloat(row.Price),
		renderNullableTime(row.Datetime),
		row.Date,
		row.Time,
	}, "\x1f")
}

// lessRow orders rows by the merge sort key. Null Product and null
// Datetime sort after their non-null peers at the same level; price
// and brand break remaining ties so the output is deterministic
// regardless of vendor concatenation order.
func lessRow(a, b internal.PriceRow) bool {
	if a.Supplier != b.Supplier {
		return a.Supplier < b.Supplier
	}
	if a.Location != b.Location {
		return a.Location < b.Location
	}
	if a.Terminal != b.Terminal {
		return a.Terminal < b.Terminal
	}
	if c := compareNullableString(a.Product, b.Product); c != 0 {
		return c < 0
	}
	if c := compareNullableTime(a.Datetime, b.Datetime); c != 0 {
		return c < 0
	}
	if c := compareNullableFloat(a.Price, b.Price); c != 0 {
		return c < 0
	}
	return a.Brand < b.Brand
}

func compareNullableString(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func compareNullableTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}

func compareNullableFloat(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func renderNullableString(v *string) string {
	if v == nil {
		return "\x00"
	}
	return *v
}

func renderNullableFloat(v *float64) string {
	if v == nil {
		return "\x00"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func renderNullableTime(v *time.Time) string {
	if v == nil {
		return "\x00"
	}
	return v.Format("2006-01-02 15:04:05")
}
