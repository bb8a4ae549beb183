package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS ingestion_records (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		captured_at     TEXT    NOT NULL,
		trap_id         TEXT    NOT NULL,
		trap_type       TEXT    NOT NULL,
		gps             TEXT    NOT NULL,
		egg_count       INTEGER NOT NULL CHECK (egg_count >= 0),
		barangay        TEXT    NOT NULL DEFAULT '',
		integrity_valid INTEGER NOT NULL
	)`,
	`CREATE TRIGGER IF NOT EXISTS ingestion_records_no_update
		BEFORE UPDATE ON ingestion_records
		BEGIN SELECT RAISE(ABORT, 'ingestion_records is append-only'); END`,
	`CREATE TRIGGER IF NOT EXISTS ingestion_records_no_delete
		BEFORE DELETE ON ingestion_records
		BEGIN SELECT RAISE(ABORT, 'ingestion_records is append-only'); END`,
}

// SQLiteStore persists records to an embedded SQLite file.
// A single connection serializes writers.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "trapwatch.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, rec Record) (int64, error) {
	if err := validate(rec); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ingestion_records(captured_at, trap_id, trap_type, gps, egg_count, barangay, integrity_valid)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.TrapID, rec.TrapType, rec.GPS, rec.EggCount, rec.Barangay, rec.IntegrityValid,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert record: %v", ErrStorage, err)
	}
	return id, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, captured_at, trap_id, trap_type, gps, egg_count, barangay, integrity_valid
		FROM ingestion_records
		ORDER BY id DESC
		LIMIT ?`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	out := []Record{}
	for rows.Next() {
		r, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrStorage, err)
	}
	return out, nil
}

func (s *SQLiteStore) HighestEggCount(ctx context.Context) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, captured_at, trap_id, trap_type, gps, egg_count, barangay, integrity_valid
		FROM ingestion_records
		ORDER BY egg_count DESC, id ASC
		LIMIT 1`)
	r, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (Record, error) {
	var (
		r  Record
		ts string
	)
	if err := row.Scan(&r.ID, &ts, &r.TrapID, &r.TrapType, &r.GPS, &r.EggCount, &r.Barangay, &r.IntegrityValid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: scan record: %v", ErrStorage, err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Record{}, fmt.Errorf("%w: parse captured_at %q: %v", ErrStorage, ts, err)
	}
	r.Timestamp = parsed.UTC()
	return r, nil
}
