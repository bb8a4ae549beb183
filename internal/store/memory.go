package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps records in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
}

// NewMemoryStore returns an empty store whose first ID is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) Insert(_ context.Context, rec Record) (int64, error) {
	if err := validate(rec); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	rec.Timestamp = rec.Timestamp.UTC()
	m.nextID++
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *MemoryStore) ListRecent(_ context.Context, limit int) ([]Record, error) {
	limit = ClampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.records))
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *MemoryStore) HighestEggCount(_ context.Context) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return Record{}, false, nil
	}
	best := m.records[0]
	for _, r := range m.records[1:] {
		// Strictly greater keeps the earliest record on ties.
		if r.EggCount > best.EggCount {
			best = r
		}
	}
	return best, true, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
