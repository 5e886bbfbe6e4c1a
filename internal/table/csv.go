package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Staging masters come from many mail clients and export paths, so
// decode attempts walk the same ladder the original loader used:
// utf-8, utf-16, iso-8859-1, cp1252, each tried with ',', ';' and
// tab separators.
var decoders = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", unicode.UTF8},
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)},
	{"iso-8859-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
}

var separators = []rune{',', ';', '\t'}

// ReadCSV sniffs encoding and separator and parses data into a Table.
// The first record is the header; short rows are padded and long rows
// truncated to the header width.
func ReadCSV(data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Table{}, nil
	}

	var fallback *Table
	var lastErr error
	for _, dec := range decoders {
		if dec.name == "utf-8" && !utf8.Valid(data) {
			continue
		}
		decoded, err := dec.enc.NewDecoder().Bytes(data)
		if err != nil {
			lastErr = err
			continue
		}
		for _, sep := range separators {
			t, err := parseCSV(decoded, sep)
			if err != nil {
				lastErr = err
				continue
			}
			if len(t.Columns) > 1 {
				return t, nil
			}
			if fallback == nil {
				fallback = t
			}
		}
	}

	// A genuine single-column file parses cleanly but never exceeds
	// one column; hand back the first clean parse in that case.
	if fallback != nil {
		return fallback, nil
	}
	if lastErr == nil {
		lastErr = errors.New("undecodable csv payload")
	}
	return nil, fmt.Errorf("read csv: %w", lastErr)
}

// ReadCSVFile reads path with ReadCSV. A missing file yields an empty
// table: a vendor with no staging master contributes zero rows, not a
// pipeline failure.
func ReadCSVFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{}, nil
		}
		return nil, err
	}
	return ReadCSV(data)
}

func parseCSV(data []byte, sep rune) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = stripBOM(header[0])
	}
	t := &Table{Columns: header}
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV renders the table as UTF-8 comma-separated text with a
// header row.
func WriteCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func stripBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
