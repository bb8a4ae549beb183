package store

import (
	"context"
	"errors"
	"time"
)

// ErrStorage wraps every failure coming from the underlying storage engine.
var ErrStorage = errors.New("storage failure")

const (
	// DefaultListLimit is used when a caller passes a non-positive limit.
	DefaultListLimit = 200
	// MaxListLimit caps ListRecent; larger requests are truncated.
	MaxListLimit = 200
)

// Record is one persisted ingestion event. Records are append-only.
type Record struct {
	ID             int64
	Timestamp      time.Time
	TrapID         string
	TrapType       string
	GPS            string
	EggCount       int
	Barangay       string
	IntegrityValid bool
}

// Store is the append-only record collection.
type Store interface {
	// Insert appends rec and returns its newly assigned ID. rec.ID is ignored.
	Insert(ctx context.Context, rec Record) (int64, error)
	// ListRecent returns up to limit records, most recent first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	// HighestEggCount returns the record with the largest egg count,
	// earliest insertion winning ties. ok is false when the store is empty.
	HighestEggCount(ctx context.Context) (rec Record, ok bool, err error)
	Ping(ctx context.Context) error
	Close() error
}

// ClampLimit applies the default and the cap to a requested list size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func validate(rec Record) error {
	if rec.TrapID == "" || rec.TrapType == "" || rec.GPS == "" {
		return errors.New("trapID/trapType/gps required")
	}
	if rec.EggCount < 0 {
		return errors.New("eggCount must be non-negative")
	}
	return nil
}
