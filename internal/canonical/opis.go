package canonical

import (
	"regexp"
	"strings"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/util"
)

// OPIS terminal reports carry up to three products per line, declared
// by the section header. opisSectionProducts maps a section to the
// product behind each positional price column; price1 feeds the first
// listed product, price2 the second, price3 the third.
var opisSectionProducts = map[string][]string{
	"UNL MID PRE":        {"UNL", "MID", "PRE"},
	"UNL MID PRE RFG":    {"RFG UNL", "RFG MID", "RFG PRE"},
	"CBG UNL MID PRE":    {"CBG UNL", "CBG MID", "CBG PRE"},
	"CARB UNL MID PRE":   {"CARB UNL", "CARB MID", "CARB PRE"},
	"E10 UNL MID PRE":    {"87 E10", "89 E10", "91 E10"},
	"UNL PRE":            {"UNL", "PRE"},
	"UNL MID":            {"UNL", "MID"},
	"ULS ULS RD":         {"ULSD", "RED ULSD"},
	"CARB ULS ULS RD":    {"CARB ULSD", "CARB RED ULSD"},
	"ULS NO2":            {"ULSD", "NO2"},
	"ULS":                {"ULSD"},
	"ULS RD":             {"RED ULSD"},
	"ULS CFI":            {"ULSD CFI"},
	"B5 ULS":             {"B5 ULSD"},
	"B10 ULS":            {"B10 ULSD"},
	"B20 ULS":            {"B20 ULSD"},
	"E85":                {"E85"},
	"KERO":               {"KERO"},
}

// Only branded/unbranded quote lines are price data; every other type
// code is a rack average or summary artifact.
var opisAcceptedTypes = map[string]bool{"b": true, "u": true, "B": true, "U": true}

// Supplier texts containing these markers are aggregate or region
// noise lines, not individual supplier quotes.
var opisNoiseMarkers = []string{"OPIS", "TMNL", "CONT", "FOB"}

var (
	reOpisMonthDay  = regexp.MustCompile(`\b(\d{1,2}/\d{1,2})\b`)
	reOpisFullDate  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	reOpisYear      = regexp.MustCompile(`\b(20\d{2})\b`)
	reOpisTimeFull  = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	reOpisTimeShort = regexp.MustCompile(`\b(\d{1,2}):([0-5]\d):(\d)\b`)
	reOpisMinOnly   = regexp.MustCompile(`^:([0-5]\d)$`)
	reOpisTrailHour = regexp.MustCompile(`([01]?\d|2[0-3])$`)
)

// Known reseller rows omit a usable clock entirely; their quotes post
// at a fixed minute past midnight.
const (
	opisResellerKeyword = "US OIL"
	opisResellerTime    = "00:01:00"
)

// NormalizeOPIS expands each report line into one canonical row per
// product its section declares, resolving the effective date and time
// through the documented fallback ladders.
func NormalizeOPIS(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		supplier := t.Cell(i, "supplier")
		typeCode := t.Cell(i, "type")
		if typeCode != "" && !opisAcceptedTypes[typeCode] {
			continue
		}
		if opisIsNoise(supplier) {
			continue
		}

		products := opisProductsForSection(t.Cell(i, "section"))
		if len(products) == 0 {
			continue
		}

		date := opisResolveDate(t, i, typeCode, len(products))
		clock := opisResolveTime(t, i, supplier)

		priceCols := []string{"price1", "price2", "price3"}
		for p, product := range products {
			price := util.ParsePrice(t.Cell(i, priceCols[p]))
			if price == nil {
				continue
			}
			row := internal.PriceRow{
				Supplier: supplier,
				Terminal: t.Cell(i, "terminal"),
				Brand:    t.Cell(i, "brand"),
				Product:  util.StringPtr(product),
				Price:    price,
			}
			setFixedDatetime(&row, date, clock)
			out = append(out, row)
		}
	}
	return out
}

func opisIsNoise(supplier string) bool {
	upper := strings.ToUpper(supplier)
	for _, marker := range opisNoiseMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func opisProductsForSection(section string) []string {
	normalized := strings.ToUpper(section)
	normalized = strings.ReplaceAll(normalized, "**OPIS NET TERMINAL", "")
	normalized = strings.ReplaceAll(normalized, "PRICES**", "")
	normalized = strings.ReplaceAll(normalized, "/", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")
	if products, ok := opisSectionProducts[normalized]; ok {
		return products
	}
	return nil
}

// opisResolveDate walks the date fallback ladder in priority order:
//
//  1. an aggregated MM/DD embedded in the supplier text, with the
//     year scraped from the marketing area;
//  2. when the line has no type code, a full report date embedded in
//     the marketing area;
//  3. per-product-count probing of the positional columns, where the
//     date substring shifts into a price/move column as the product
//     count shrinks.
//
// Anything the ladder cannot resolve stays blank and the row's
// datetime fields go null downstream.
func opisResolveDate(t *table.Table, i int, typeCode string, productCount int) string {
	supplier := t.Cell(i, "supplier")
	area := t.Cell(i, "marketing_area")

	if md := reOpisMonthDay.FindString(supplier); md != "" {
		if year := reOpisYear.FindString(area); year != "" {
			return md + "/" + year
		}
	}

	if typeCode == "" {
		if full := reOpisFullDate.FindString(area); full != "" {
			return full
		}
	}

	var candidates []string
	switch productCount {
	case 3:
		candidates = []string{t.Cell(i, "date")}
	case 2:
		candidates = []string{t.Cell(i, "price3"), t.Cell(i, "date")}
	default:
		candidates = []string{t.Cell(i, "move2"), t.Cell(i, "price2"), t.Cell(i, "date")}
	}
	for _, c := range candidates {
		if full := reOpisFullDate.FindString(c); full != "" {
			return full
		}
		if md := reOpisMonthDay.FindString(c); md != "" {
			if year := reOpisYear.FindString(area); year != "" {
				return md + "/" + year
			}
			return md
		}
	}
	return ""
}

// opisResolveTime walks the time fallback ladder: a full HH:MM in a
// move column, the malformed HH:MM:S pattern truncated to its HH:MM
// prefix, a minutes-only time cell whose hour sits at the tail of the
// adjacent price column, then the reseller-keyword fixed time.
func opisResolveTime(t *table.Table, i int, supplier string) string {
	for _, col := range []string{"move3", "move2", "move1"} {
		if m := reOpisTimeFull.FindString(t.Cell(i, col)); m != "" {
			return padClock(m)
		}
	}

	timeCell := t.Cell(i, "time")
	if m := reOpisTimeFull.FindString(timeCell); m != "" {
		return padClock(m)
	}
	if m := reOpisTimeShort.FindStringSubmatch(timeCell); m != nil {
		return padClock(m[1] + ":" + m[2])
	}
	if m := reOpisMinOnly.FindStringSubmatch(timeCell); m != nil {
		if h := reOpisTrailHour.FindString(t.Cell(i, "price3")); h != "" {
			return padClock(h + ":" + m[1])
		}
	}
	if strings.Contains(strings.ToUpper(supplier), opisResellerKeyword) {
		return opisResellerTime
	}
	return "00:00:00"
}

func padClock(hhmm string) string {
	if len(hhmm) == 4 {
		hhmm = "0" + hhmm
	}
	return hhmm + ":00"
}
