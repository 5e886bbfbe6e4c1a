package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/table"
)

// Store appends extracted tables to each vendor's historical master
// CSV and reads them back for the canonical pipeline.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) masterPath(vendor internal.VendorKey) string {
	return filepath.Join(s.dir, string(vendor), string(vendor)+"_historical_master.csv")
}

// Append merges new rows into the vendor's master file. Rows already
// present are dropped so re-staging the same email is a no-op. When
// the incoming header differs from the master's, incoming rows are
// remapped by column name; columns the master lacks are appended.
func (s *Store) Append(vendor internal.VendorKey, incoming *table.Table) (int, error) {
	if incoming.IsEmpty() {
		return 0, nil
	}

	path := s.masterPath(vendor)
	master, err := table.ReadCSVFile(path)
	if err != nil {
		return 0, err
	}

	if master.IsEmpty() {
		master = table.New(incoming.Columns...)
	} else {
		for _, col := range incoming.Columns {
			if !master.HasColumn(col) {
				master.AddColumn(col)
			}
		}
	}

	seen := make(map[string]struct{}, master.Len())
	for i := 0; i < master.Len(); i++ {
		seen[strings.Join(master.Rows[i], "\x1f")] = struct{}{}
	}

	added := 0
	for i := 0; i < incoming.Len(); i++ {
		row := make([]string, len(master.Columns))
		for c, col := range master.Columns {
			row[c] = incoming.Cell(i, col)
		}
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		master.Rows = append(master.Rows, row)
		added++
	}

	if added == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	blob, err := table.WriteCSV(master)
	if err != nil {
		return 0, fmt.Errorf("encode %s master: %w", vendor, err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return 0, fmt.Errorf("write %s master: %w", vendor, err)
	}
	return added, nil
}

// Load reads the vendor's master file. A vendor that has never staged
// anything yields an empty table.
func (s *Store) Load(vendor internal.VendorKey) (*table.Table, error) {
	return table.ReadCSVFile(s.masterPath(vendor))
}
