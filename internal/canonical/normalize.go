// Package canonical converts each vendor's raw staging table into the
// unified price-quote schema and merges the results into the final
// reporting table.
package canonical

import (
	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/util"
)

// NormalizeFunc maps one vendor's raw table to canonical rows. Each
// vendor's function is pure: no shared state, an empty or nil input
// table yields an empty result, and per-field parse failures degrade
// to nulls in that row.
type NormalizeFunc func(t *table.Table) []internal.PriceRow

// Registry binds every supported vendor to its rule set.
var Registry = map[internal.VendorKey]NormalizeFunc{
	internal.VendorBBEnergy: NormalizeBBEnergy,
	internal.VendorBigWest:  NormalizeBigWest,
	internal.VendorBradHall: NormalizeBradHall,
	internal.VendorChevron:  NormalizeChevron,
	internal.VendorKotaco:   NormalizeKotaco,
	internal.VendorMarathon: NormalizeMarathon,
	internal.VendorMusket:   NormalizeMusket,
	internal.VendorOffen:    NormalizeOffen,
	internal.VendorOPIS:     NormalizeOPIS,
	internal.VendorRebel:    NormalizeRebel,
	internal.VendorShell:    NormalizeShell,
	internal.VendorSinclair: NormalizeSinclair,
	internal.VendorSunoco:   NormalizeSunoco,
	internal.VendorTartan:   NormalizeTartan,
	internal.VendorValero:   NormalizeValero,
}

// standardizeDatetime implements the shared sub-protocol: parse the
// date-bearing and time-bearing values permissively, render Date as
// YYYY-MM-DD and Time as HH:MM:SS, then recompose Datetime from those
// rendered strings so the three stay consistent by construction.
//
// A failed date parse nulls all three fields for the row. A failed
// time parse with a good date degrades to 00:00:00 rather than
// dropping the row.
func standardizeDatetime(row *internal.PriceRow, dateRaw, timeRaw string) {
	dateParsed := util.ParseDateTime(dateRaw)
	if dateParsed == nil {
		return
	}
	row.Date = dateParsed.Format("2006-01-02")

	row.Time = "00:00:00"
	if timeParsed := util.ParseDateTime(timeRaw); timeParsed != nil {
		row.Time = timeParsed.Format("15:04:05")
	}

	row.Datetime = util.CombineDateTime(row.Date, row.Time)
}

// setFixedDatetime is standardizeDatetime for vendors whose source has
// no time-of-day: the clock is pinned and only the date is parsed.
func setFixedDatetime(row *internal.PriceRow, dateRaw, clock string) {
	dateParsed := util.ParseDateTime(dateRaw)
	if dateParsed == nil {
		return
	}
	row.Date = dateParsed.Format("2006-01-02")
	row.Time = clock
	row.Datetime = util.CombineDateTime(row.Date, row.Time)
}

func inStringSet(value string, set []string) bool {
	for _, s := range set {
		if value == s {
			return true
		}
	}
	return false
}
