// Package table holds the rows-by-named-columns shape every vendor's
// raw staging data arrives in. A missing column or short row reads as
// "" so adapters do not have to agree on an exact schema.
package table

import "strings"

type Table struct {
	Columns []string
	Rows    [][]string
}

func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AddColumn widens the table with a new named column, padding existing
// rows with "".
func (t *Table) AddColumn(name string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// Cell returns the value at (row, column name), or "" when either is
// out of range.
func (t *Table) Cell(row int, column string) string {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return ""
	}
	idx := t.ColumnIndex(column)
	if idx < 0 || idx >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][idx])
}
