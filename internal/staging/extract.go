// Package staging turns fetched supplier emails into per-vendor raw
// tables and maintains each vendor's historical master file.
package staging

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
)

// TableSource records where in the email an extracted table came from.
type TableSource string

const (
	SourceCSVAttachment  TableSource = "csv"
	SourceXLSXAttachment TableSource = "xlsx"
	SourcePDFAttachment  TableSource = "pdf"
	SourceOPISAttachment TableSource = "opis_report"
	SourceHTMLBody       TableSource = "html_table"
)

// ExtractedTable is one raw table pulled out of an email.
type ExtractedTable struct {
	Source TableSource
	Name   string
	Table  *table.Table
}

// Extraction is everything staging needs from a fetched message.
type Extraction struct {
	Subject         string
	Sender          string
	AttachmentNames []string
	Tables          []ExtractedTable
}

// ExtractFromEmailRaw parses a raw RFC 822 message and extracts every
// table it can find: CSV, XLSX, and PDF attachments plus HTML body
// tables. OPIS fixed-width reports arrive as plain-text attachments
// and get their own parser. Individual attachment failures are
// skipped, not fatal.
func ExtractFromEmailRaw(raw []byte, isOPIS bool) (Extraction, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Extraction{}, err
	}

	out := Extraction{
		Subject: env.GetHeader("Subject"),
		Sender:  env.GetHeader("From"),
	}

	if env.HTML != "" {
		for i, t := range parseHTMLTables(env.HTML) {
			if !t.IsEmpty() {
				out.Tables = append(out.Tables, ExtractedTable{
					Source: SourceHTMLBody,
					Name:   htmlTableName(i),
					Table:  t,
				})
			}
		}
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		out.AttachmentNames = append(out.AttachmentNames, filename)
		lower := strings.ToLower(filename)

		switch {
		case isOPIS && (strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".csv")):
			if t := ParseOPISReport(string(att.Content)); !t.IsEmpty() {
				out.Tables = append(out.Tables, ExtractedTable{Source: SourceOPISAttachment, Name: filename, Table: t})
			}
		case strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".txt"):
			if t, err := table.ReadCSV(att.Content); err == nil && !t.IsEmpty() {
				out.Tables = append(out.Tables, ExtractedTable{Source: SourceCSVAttachment, Name: filename, Table: t})
			}
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			if t, err := parseXLSX(att.Content); err == nil && !t.IsEmpty() {
				out.Tables = append(out.Tables, ExtractedTable{Source: SourceXLSXAttachment, Name: filename, Table: t})
			}
		case strings.HasSuffix(lower, ".pdf"):
			if t, err := parsePDF(att.Content); err == nil && !t.IsEmpty() {
				out.Tables = append(out.Tables, ExtractedTable{Source: SourcePDFAttachment, Name: filename, Table: t})
			}
		}
	}

	return out, nil
}

func htmlTableName(i int) string {
	if i == 0 {
		return "body"
	}
	return "body#" + strconv.Itoa(i)
}

func parseHTMLTables(html string) []*table.Table {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []*table.Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		rows := sel.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, normalizeSpaces(cell.Text()))
		})
		if len(headers) == 0 {
			return
		}

		t := table.New(headers...)
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpaces(cell.Text()))
			})
			if allBlank(cells) {
				return
			}
			t.Append(cells...)
		})
		out = append(out, t)
	})

	return out
}

// parseXLSX flattens every sheet into one table, using the first
// non-empty row of the first sheet as the header.
func parseXLSX(content []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t *table.Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				cells = append(cells, normalizeSpaces(c))
			}
			if allBlank(cells) {
				continue
			}
			if t == nil {
				t = table.New(cells...)
				continue
			}
			t.Append(cells...)
		}
	}
	if t == nil {
		t = &table.Table{}
	}
	return t, nil
}

// parsePDF recovers a table from the text layer by splitting each line
// on runs of two or more spaces. The first line that splits into
// multiple cells becomes the header.
func parsePDF(content []byte) (*table.Table, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var t *table.Table
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			cells := splitPDFLine(line)
			if len(cells) < 2 {
				continue
			}
			if t == nil {
				t = table.New(cells...)
				continue
			}
			t.Append(cells...)
		}
	}
	if t == nil {
		t = &table.Table{}
	}
	return t, nil
}

var rePDFGap = regexp.MustCompile(`\s{2,}`)

func splitPDFLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return rePDFGap.Split(line, -1)
}

var reSpaces = regexp.MustCompile(`\s+`)

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
