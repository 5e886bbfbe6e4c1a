package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  vendor TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS canonical_prices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  supplier TEXT NOT NULL,
  location TEXT NOT NULL,
  terminal TEXT NOT NULL,
  product TEXT,
  brand TEXT,
  price REAL,
  datetime TEXT,
  date TEXT,
  time TEXT,
  change REAL,
  supplyArea TEXT,
  productCode TEXT,
  terminalNew TEXT,
  productGroup TEXT,
  alternateAccount TEXT,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_canonical_prices_run ON canonical_prices(runId);
CREATE INDEX IF NOT EXISTS idx_canonical_prices_group ON canonical_prices(supplier, location, terminal, product);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

func (d *DB) SetEmailVendor(emailID int, vendor internal.VendorKey) error {
	_, err := d.conn.Exec(`UPDATE emails SET vendor = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, string(vendor), emailID)
	return err
}

// InsertRun records one pipeline execution and returns its id so the
// canonical snapshot can reference it.
func (d *DB) InsertRun(traceID string, counts map[string]int, timings map[string]float64) (int64, error) {
	countsJSON, _ := json.Marshal(counts)
	timingsJSON, _ := json.Marshal(timings)
	result, err := d.conn.Exec(`INSERT INTO runs (traceId, countsJson, timingsJson) VALUES (?, ?, ?)`,
		traceID, string(countsJSON), string(timingsJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ReplaceCanonicalPrices stores the merged table for a run.
func (d *DB) ReplaceCanonicalPrices(runID int64, rows []internal.EnrichedPriceRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM canonical_prices WHERE runId = ?`, runID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO canonical_prices (
  runId, supplier, location, terminal, product, brand,
  price, datetime, date, time, change,
  supplyArea, productCode, terminalNew, productGroup, alternateAccount
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		var datetime *string
		if row.Datetime != nil {
			s := row.Datetime.Format("2006-01-02 15:04:05")
			datetime = &s
		}
		if _, err := stmt.Exec(
			runID, row.Supplier, row.Location, row.Terminal, row.Product, row.Brand,
			row.Price, datetime, row.Date, row.Time, row.Change,
			row.SupplyArea, row.ProductCode, row.TerminalNew, row.ProductGroup, row.AlternateAccount,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListCanonicalPrices reads back one run's snapshot in stored order.
func (d *DB) ListCanonicalPrices(runID int64) ([]internal.EnrichedPriceRow, error) {
	rows, err := d.conn.Query(`
SELECT supplier, location, terminal, product, brand,
       price, datetime, date, time, change,
       supplyArea, productCode, terminalNew, productGroup, alternateAccount
FROM canonical_prices WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EnrichedPriceRow
	for rows.Next() {
		var row internal.EnrichedPriceRow
		var datetime *string
		if err := rows.Scan(
			&row.Supplier, &row.Location, &row.Terminal, &row.Product, &row.Brand,
			&row.Price, &datetime, &row.Date, &row.Time, &row.Change,
			&row.SupplyArea, &row.ProductCode, &row.TerminalNew, &row.ProductGroup, &row.AlternateAccount,
		); err != nil {
			return nil, err
		}
		if datetime != nil {
			if parsed, err := time.Parse("2006-01-02 15:04:05", *datetime); err == nil {
				row.Datetime = &parsed
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) LatestRunID() (int64, error) {
	var id int64
	err := d.conn.QueryRow(`SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no pipeline runs recorded")
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
