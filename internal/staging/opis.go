package staging

import (
	"strings"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
)

// OPIS reports are fixed-width text. Each "**OPIS NET TERMINAL ...**"
// header opens a section; the line immediately before it names the
// marketing area. Within a section, the first two lines are column
// headers and each following line is one supplier quote.
var opisColumns = []string{
	"supplier", "type", "brand", "terminal",
	"price1", "move1", "price2", "move2", "price3", "move3",
	"date", "time", "section", "marketing_area",
}

// Start offsets of the positional value columns: price1..move3, then
// date and time.
var opisValueOffsets = []int{28, 36, 43, 51, 58, 66, 73, 79}

var opisSummaryPrefixes = []string{"TMNL", "CONT", "LOW", "AVG", "OPIS", "FOB"}

// ParseOPISReport converts one OPIS text report into a staging table.
// Summary lines are kept: they carry no type code but may hold the
// only usable date for an aggregated quote.
func ParseOPISReport(content string) *table.Table {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	out := table.New(opisColumns...)
	var section, area string
	var sectionStart int

	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t")

		if i+1 < len(lines) && strings.Contains(lines[i+1], "**OPIS NET TERMINAL") {
			area = strings.TrimSpace(line)
		}
		if strings.Contains(line, "**OPIS NET TERMINAL") {
			section = strings.TrimSpace(line)
			sectionStart = i
			continue
		}
		if section == "" {
			continue
		}
		// Two header lines follow every section banner.
		if i-sectionStart <= 2 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "Move") || strings.Contains(line, "Date") || strings.Contains(line, "Time") {
			continue
		}

		out.Append(parseOpisLine(line, section, area)...)
	}

	return out
}

func parseOpisLine(line, section, area string) []string {
	summary := false
	trimmed := strings.TrimSpace(line)
	for _, prefix := range opisSummaryPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			summary = true
			break
		}
	}

	var supplier, typeCode, brand, terminal string
	if summary {
		supplier = sliceField(line, 0, 28)
	} else {
		supplier = sliceField(line, 0, 11)
		typeCode = sliceField(line, 11, 13)
		brand = sliceField(line, 13, 18)
		terminal = sliceField(line, 18, 28)
	}

	values := make([]string, len(opisValueOffsets))
	for i, start := range opisValueOffsets {
		end := len(line)
		if i < len(opisValueOffsets)-1 {
			end = opisValueOffsets[i+1]
		}
		v := sliceField(line, start, end)
		if v == "--" {
			v = ""
		}
		values[i] = v
	}

	row := []string{supplier, typeCode, brand, terminal}
	row = append(row, values...)
	row = append(row, section, area)
	return row
}

func sliceField(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}
