package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000

var tableName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// OpenSQLite opens (creating if needed) the database shared by the SQLite
// snapshot backends. SQLite serialises writers, so the pool is limited to a
// single connection and WAL is enabled for readers.
func OpenSQLite(ctx context.Context, path string, busyTimeout int) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: set busy_timeout: %w", err)
	}
	return db, nil
}

// SQLite keeps a snapshot in its own table. Each row holds the JSON encoding
// of one record and its position in the collection; Save swaps the whole
// table contents inside one transaction.
type SQLite[R any] struct {
	db    *sql.DB
	table string
}

// NewSQLite prepares the table for one record kind.
func NewSQLite[R any](ctx context.Context, db *sql.DB, table string) (*SQLite[R], error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}
	s := &SQLite[R]{db: db, table: table}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite[R]) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		seq  INTEGER PRIMARY KEY,
		body TEXT NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("store: init schema for %s: %w", s.table, err)
	}
	return nil
}

// Load returns the records in the order they were saved. An empty table is a
// valid, empty snapshot.
func (s *SQLite[R]) Load(ctx context.Context) ([]R, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT body FROM %s ORDER BY seq`, s.table))
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	records := []R{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", s.table, err)
		}
		var r R
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("store: decode %s row: %w", s.table, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", s.table, err)
	}
	return records, nil
}

// Save replaces the table contents with records.
func (s *SQLite[R]) Save(ctx context.Context, records []R) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin %s: %w", s.table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("store: clear %s: %w", s.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (seq, body) VALUES (?, ?)`, s.table))
	if err != nil {
		return fmt.Errorf("store: prepare %s: %w", s.table, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		body, mErr := json.Marshal(r)
		if mErr != nil {
			err = fmt.Errorf("store: encode %s row %d: %w", s.table, i, mErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, i, string(body)); err != nil {
			return fmt.Errorf("store: insert %s row %d: %w", s.table, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit %s: %w", s.table, err)
	}
	return nil
}
