package canonical

import (
	"testing"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/util"
)

func makeRow(supplier, location, terminal, product string, price float64, at string) internal.PriceRow {
	ts, err := time.Parse("2006-01-02 15:04:05", at)
	if err != nil {
		panic(err)
	}
	return internal.PriceRow{
		Supplier: supplier,
		Location: location,
		Terminal: terminal,
		Product:  util.StringPtr(product),
		Brand:    "Unbranded",
		Price:    util.FloatPtr(price),
		Datetime: &ts,
		Date:     ts.Format("2006-01-02"),
		Time:     ts.Format("15:04:05"),
	}
}

func TestMergeDropsFullDuplicates(t *testing.T) {
	row := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00")
	merged := Merge(
		[]internal.PriceRow{row},
		[]internal.PriceRow{row},
	)
	if len(merged) != 1 {
		t.Fatalf("identical rows from two vendors must collapse, got %d", len(merged))
	}
}

func TestMergeKeepsNearDuplicates(t *testing.T) {
	a := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00")
	b := a
	b.Price = util.FloatPtr(2.51)
	merged := Merge([]internal.PriceRow{a, b})
	if len(merged) != 2 {
		t.Fatalf("rows differing in any field must both survive, got %d", len(merged))
	}
}

func TestMergeChangeWithinGroups(t *testing.T) {
	merged := Merge([]internal.PriceRow{
		makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.75, "2024-04-16 06:00:00"),
		makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00"),
		makeRow("Shell", "Las Vegas", "SigRack", "UNL", 2.25, "2024-04-15 06:00:00"),
	})
	if len(merged) != 3 {
		t.Fatalf("rows = %d", len(merged))
	}
	// Sorted: ULSD 04-15, ULSD 04-16, UNL 04-15.
	if merged[0].Change != nil {
		t.Fatalf("first row of a group must have null Change, got %v", *merged[0].Change)
	}
	if merged[1].Change == nil || *merged[1].Change != 0.25 {
		t.Fatalf("Change = %v, want 0.25", merged[1].Change)
	}
	if merged[2].Change != nil {
		t.Fatalf("different product must start a new group")
	}
}

func TestMergeChangeNullOperands(t *testing.T) {
	a := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00")
	b := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.60, "2024-04-16 06:00:00")
	b.Price = nil
	c := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.70, "2024-04-17 06:00:00")

	merged := Merge([]internal.PriceRow{a, b, c})
	if merged[1].Change != nil {
		t.Fatalf("null current price must yield null Change")
	}
	if merged[2].Change != nil {
		t.Fatalf("null previous price must yield null Change")
	}
}

func TestMergeNullProductGetsNoChange(t *testing.T) {
	a := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00")
	b := a
	b.Product = nil
	b.Price = util.FloatPtr(2.60)
	c := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.70, "2024-04-16 06:00:00")

	merged := Merge([]internal.PriceRow{a, b, c})
	for _, row := range merged {
		if row.Product == nil && row.Change != nil {
			t.Fatalf("null-product row must never carry a Change")
		}
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	a := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00")
	b := makeRow("Musket", "Las Vegas", "Nellis", "87 E10", 2.21, "2024-04-15 00:01:00")
	c := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.60, "2024-04-16 06:00:00")

	first := Merge([]internal.PriceRow{a, c}, []internal.PriceRow{b})
	second := Merge([]internal.PriceRow{b}, []internal.PriceRow{c, a})

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if rowKey(first[i]) != rowKey(second[i]) {
			t.Fatalf("row %d differs across concatenation orders", i)
		}
		fc, sc := first[i].Change, second[i].Change
		if (fc == nil) != (sc == nil) || (fc != nil && *fc != *sc) {
			t.Fatalf("row %d Change differs across concatenation orders", i)
		}
	}
}

func TestMergeNullDatetimeSortsLast(t *testing.T) {
	a := makeRow("Shell", "Las Vegas", "SigRack", "ULSD", 2.50, "2024-04-15 06:00:00")
	b := a
	b.Datetime = nil
	b.Date = ""
	b.Time = ""
	b.Price = util.FloatPtr(2.40)

	merged := Merge([]internal.PriceRow{b, a})
	if merged[0].Datetime == nil {
		t.Fatalf("null datetime must sort after non-null within the group")
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if merged := Merge(); len(merged) != 0 {
		t.Fatalf("no vendor tables must yield an empty result")
	}
	if merged := Merge(nil, []internal.PriceRow{}); len(merged) != 0 {
		t.Fatalf("empty vendor tables must yield an empty result")
	}
}
