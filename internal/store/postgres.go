package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for ingestion records.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// Insert appends a record. The BIGSERIAL sequence hands out unique,
// increasing IDs to concurrent writers.
func (p *PostgresStore) Insert(ctx context.Context, rec Record) (int64, error) {
	if err := validate(rec); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var id int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO ingestion_records(captured_at, trap_id, trap_type, gps, egg_count, barangay, integrity_valid)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, rec.Timestamp.UTC(), rec.TrapID, rec.TrapType, rec.GPS, rec.EggCount, rec.Barangay, rec.IntegrityValid).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert record: %v", ErrStorage, err)
	}
	return id, nil
}

// ListRecent returns the newest records first.
func (p *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, captured_at, trap_id, trap_type, gps, egg_count, barangay, integrity_valid
		FROM ingestion_records
		ORDER BY id DESC
		LIMIT $1
	`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrStorage, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.TrapID, &r.TrapType, &r.GPS, &r.EggCount, &r.Barangay, &r.IntegrityValid); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrStorage, err)
		}
		r.Timestamp = r.Timestamp.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrStorage, err)
	}
	return out, nil
}

// HighestEggCount picks the riskiest record; the lower id wins a tie.
func (p *PostgresStore) HighestEggCount(ctx context.Context) (Record, bool, error) {
	var r Record
	err := p.pool.QueryRow(ctx, `
		SELECT id, captured_at, trap_id, trap_type, gps, egg_count, barangay, integrity_valid
		FROM ingestion_records
		ORDER BY egg_count DESC, id ASC
		LIMIT 1
	`).Scan(&r.ID, &r.Timestamp, &r.TrapID, &r.TrapType, &r.GPS, &r.EggCount, &r.Barangay, &r.IntegrityValid)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: highest egg count: %v", ErrStorage, err)
	}
	r.Timestamp = r.Timestamp.UTC()
	return r, true, nil
}
