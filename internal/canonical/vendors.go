package canonical

import (
	"strings"
	"time"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/util"
)

// bbenergyProducts maps BBEnergy's raw product codes to display
// names. Codes outside the map yield a null Product.
var bbenergyProducts = map[string]string{
	"B5":                "DSL#2 B5",
	"B5-Red":            "RED#2 B5",
	"CARB E10-Prem":     "CARB 91 E10",
	"CARB E10-Prem TT":  "CARB 91 E10 TT",
	"CARB E10-Unl":      "CARB 87 E10",
	"CARB E10-Unl TT":   "CARB 87 E10 TT",
	"CARB ULSD":         "CARB DSL#2",
	"CARB ULSD-Red":     "CARB RED#2",
	"CBG E10-Prem":      "CBG 91 E10",
	"CBG E10-Prem TT":   "CBG 91 E10 TT",
	"CBG E10-Unl":       "CBG 87 E10",
	"CBG E10-Unl TT":    "CBG 87 E10 TT",
	"E10-Prem":          "92 E10",
	"E10-Prem TT":       "92 E10 TT",
	"E10-Unl":           "87 E10",
	"E10-Unl TT":        "87 E10 TT",
	"RFG E10-Unl":       "RFG 85 E10",
	"RFG E10-Unl TT":    "RFG 85 E10",
	"ULSD":              "DSL#2",
	"ULSD Winterized":   "DSL#2 CFI",
	"ULSD-Red":          "RED#2",
	"ULSD-Red Winteriz": "RED#2 CFI",
	"UL2 LED DYED":      "RED#2",
	"ULSD LED":          "DSL#2",
	"ULSD LED-Red":      "RED#2",
}

func NormalizeBBEnergy(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "BBEnergy",
			Brand:    "Unbranded",
			Location: util.SplitTake(t.Cell(i, "location"), "-", 0),
			Terminal: util.SplitTake(t.Cell(i, "location"), "-", 1),
			Price:    util.ParsePrice(t.Cell(i, "price")),
		}
		if display, ok := bbenergyProducts[t.Cell(i, "product")]; ok {
			row.Product = util.StringPtr(display)
		}
		standardizeDatetime(&row, t.Cell(i, "date"), t.Cell(i, "time"))
		out = append(out, row)
	}
	return out
}

func NormalizeBigWest(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "BigWest",
			Location: t.Cell(i, "location"),
			Terminal: "",
			Price:    util.ParsePrice(t.Cell(i, "price")),
		}
		setProduct(&row, t.Cell(i, "product"))
		standardizeDatetime(&row, t.Cell(i, "date"), t.Cell(i, "time"))
		out = append(out, row)
	}
	return out
}

// BradHall staging shapes differ by parser generation: the original
// text extractor emits date/time/product/price, the PDF-table variant
// emits terminal_code/marketing_area alongside. Both collapse to
// empty Location/Terminal here, so tolerating either shape means
// reading only the columns that are present.
func NormalizeBradHall(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "BradHall",
			Price:    util.ParsePrice(t.Cell(i, "price")),
		}
		setProduct(&row, t.Cell(i, "product"))
		standardizeDatetime(&row, t.Cell(i, "date"), t.Cell(i, "time"))
		out = append(out, row)
	}
	return out
}

func NormalizeChevron(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "Chevron",
			Terminal: t.Cell(i, "Terminal"),
			Price:    util.ParsePrice(t.Cell(i, "Price")),
		}
		setProduct(&row, t.Cell(i, "Product"))
		effective := t.Cell(i, "Effective_Date")
		standardizeDatetime(&row, effective, effective)
		out = append(out, row)
	}
	return out
}

func NormalizeKotaco(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "Kotaco-" + t.Cell(i, "Supplier"),
			Terminal: t.Cell(i, "Terminal"),
			Price:    util.ParsePrice(t.Cell(i, "Price")),
		}
		setProduct(&row, t.Cell(i, "Product"))
		effective := t.Cell(i, "Effective_Date")
		standardizeDatetime(&row, effective, effective)
		out = append(out, row)
	}
	return out
}

func NormalizeMarathon(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "Marathon",
			Terminal: t.Cell(i, "terminal"),
			Price:    util.ParsePrice(t.Cell(i, "price")),
		}
		setProduct(&row, t.Cell(i, "product"))
		effective := t.Cell(i, "effective_datetime")
		standardizeDatetime(&row, effective, effective)
		out = append(out, row)
	}
	return out
}

func NormalizeMusket(t *table.Table) []internal.PriceRow {
	return normalizeDashLocation(t, func(i int) (string, string) {
		return "Musket", ""
	})
}

func NormalizeSinclair(t *table.Table) []internal.PriceRow {
	return normalizeDashLocation(t, func(i int) (string, string) {
		return t.Cell(i, "supplier"), t.Cell(i, "brand")
	})
}

func NormalizeSunoco(t *table.Table) []internal.PriceRow {
	return normalizeDashLocation(t, func(i int) (string, string) {
		return "Sunoco", ""
	})
}

// normalizeDashLocation covers the Musket/Sinclair/Sunoco rule shape:
// one combined effective_datetime column and a location column split
// on '-' into Location/Terminal.
func normalizeDashLocation(t *table.Table, identity func(i int) (supplier, brand string)) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		supplier, brand := identity(i)
		row := internal.PriceRow{
			Supplier: supplier,
			Brand:    brand,
			Location: util.SplitTake(t.Cell(i, "location"), "-", 0),
			Terminal: util.SplitTake(t.Cell(i, "location"), "-", 1),
			Price:    util.ParsePrice(t.Cell(i, "price")),
		}
		setProduct(&row, t.Cell(i, "product"))
		effective := t.Cell(i, "effective_datetime")
		standardizeDatetime(&row, effective, effective)
		out = append(out, row)
	}
	return out
}

// offenFooterRows are legal-text lines the PDF extractor misreads as
// data rows.
var offenFooterRows = []string{
	"Terms Net 10 Days via EFT or ACH",
	"Above prices are subject to midday changes and do not inculde any tax or freight",
}

func NormalizeOffen(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		terminal := t.Cell(i, "Terminal")
		if inStringSet(terminal, offenFooterRows) {
			continue
		}
		row := internal.PriceRow{
			Supplier: "Offen",
			Terminal: terminal,
			Price:    util.ParsePrice(t.Cell(i, "Price")),
		}
		setProduct(&row, t.Cell(i, "Product"))

		// Effective is a range; only the start matters, and it uses a
		// fixed layout rather than the permissive path.
		start := strings.TrimSpace(util.SplitTake(t.Cell(i, "Effective"), " - ", 0))
		if parsed := parseOffenEffective(start); parsed != nil {
			row.Date = parsed.Format("2006-01-02")
			row.Time = parsed.Format("15:04:05")
			row.Datetime = util.CombineDateTime(row.Date, row.Time)
		}
		out = append(out, row)
	}
	return out
}

// rebelNoiseRows are signature-block lines (contact names, phone
// numbers, addresses) that arrive as data rows.
var rebelNoiseRows = []string{
	"Cyndi Maurycy|Wholesale Fuels Specialist",
	"Office:  (702) 382-5866",
	"Rebel Oil Company dba ROC",
	"Cell: (725) 377-3598",
	"10650 W. Charleston Blvd., Suite 100Las Vegas, NV 89135",
	"UT",
}

func NormalizeRebel(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		terminal := t.Cell(i, "Terminal")
		if inStringSet(terminal, rebelNoiseRows) {
			continue
		}
		row := internal.PriceRow{
			Supplier: "Rebel",
			Terminal: terminal,
			Price:    util.ParsePrice(t.Cell(i, "Price")),
		}
		setProduct(&row, t.Cell(i, "Product"))

		// Source has no time-of-day; the date is the first token of a
		// composite field split on '-' or ':'.
		dateToken := util.SplitAnyTake(t.Cell(i, "Effective Datetime"), "-:", 0)
		setFixedDatetime(&row, dateToken, "00:00:00")
		out = append(out, row)
	}
	return out
}

func NormalizeShell(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "Shell",
			Location: util.SplitTake(t.Cell(i, "Terminal Name"), "-", 0),
			Terminal: util.SplitTake(t.Cell(i, "Terminal Name"), "-", 1),
			Price:    util.ParsePrice(t.Cell(i, "Price")),
		}
		setProduct(&row, t.Cell(i, "Product Name"))
		effective := t.Cell(i, "Effective Date")
		standardizeDatetime(&row, effective, effective)
		out = append(out, row)
	}
	return out
}

// tartanMainLocations are the hub cities whose names open each block
// of the Tartan report layout.
var tartanMainLocations = map[string]bool{
	"Las Vegas": true,
	"Salt Lake": true,
}

func NormalizeTartan(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	locations := make([]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		locations[i] = t.Cell(i, "Location")
	}
	resolved := CascadeFillDown(locations, func(v string) bool {
		return tartanMainLocations[v]
	})

	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "Tartan",
			Location: resolved[i].Location,
			Terminal: resolved[i].Terminal,
			Price:    util.ParsePrice(t.Cell(i, "Price")),
		}
		if row.Terminal == "" {
			row.Terminal = row.Location
		}
		setProduct(&row, t.Cell(i, "Product"))
		setFixedDatetime(&row, t.Cell(i, "Effective Date"), "00:00:00")
		out = append(out, row)
	}
	return out
}

func NormalizeValero(t *table.Table) []internal.PriceRow {
	if t.IsEmpty() {
		return nil
	}
	out := make([]internal.PriceRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := internal.PriceRow{
			Supplier: "Valero",
			Terminal: joinTokens(t.Cell(i, "terminal"), 0, 1),
			Location: joinTokens(t.Cell(i, "terminal"), 3, 5),
		}
		// Valero quotes in cents.
		if price := util.ParsePrice(t.Cell(i, "price")); price != nil {
			row.Price = util.FloatPtr(*price / 100)
		}
		setProduct(&row, t.Cell(i, "product"))
		effective := t.Cell(i, "effective_datetime")
		standardizeDatetime(&row, effective, effective)
		out = append(out, row)
	}
	return out
}

// joinTokens whitespace-splits input and joins tokens [from, to].
// Tokens past the end are skipped, so short strings degrade to a
// shorter result instead of erroring.
func joinTokens(input string, from, to int) string {
	tokens := strings.Fields(input)
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to && i < len(tokens); i++ {
		parts = append(parts, tokens[i])
	}
	return strings.Join(parts, " ")
}

// parseOffenEffective parses the explicit MM/DD/YYYY hh:mm AM/PM
// layout of Offen's effective range, not the permissive path.
func parseOffenEffective(s string) *time.Time {
	for _, layout := range []string{"01/02/2006 3:04 PM", "1/2/2006 3:04 PM"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return &parsed
		}
	}
	return nil
}

func setProduct(row *internal.PriceRow, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	row.Product = util.StringPtr(strings.TrimSpace(raw))
}
