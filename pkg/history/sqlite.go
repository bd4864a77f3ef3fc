package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL,
    input TEXT NOT NULL,
    result REAL NOT NULL
);
`

// SQLiteStore keeps the log in a local SQLite file so history survives restarts.
// Insertion order (seq) defines recency, independent of clock skew in timestamps.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts rec as the newest row.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	input, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, created_at, input, result) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), string(input), rec.Result,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// List returns every record, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, input, result FROM predictions ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			createdAt int64
			input     string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &input, &rec.Result); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(input), &rec.Input); err != nil {
			return nil, fmt.Errorf("decode input of record %s: %w", rec.ID, err)
		}
		rec.Timestamp = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
