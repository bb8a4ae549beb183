package store

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every driver must share.
func runContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	rec := func(trap string, eggs int, offset time.Duration) Record {
		return Record{
			Timestamp:      base.Add(offset),
			TrapID:         trap,
			TrapType:       "ovitrap",
			GPS:            "14.61,121.02",
			EggCount:       eggs,
			Barangay:       "Luna",
			IntegrityValid: eggs%2 == 0,
		}
	}

	t.Run("insert assigns increasing ids", func(t *testing.T) {
		s := open(t)
		id1, err := s.Insert(ctx, rec("T1", 10, 0))
		require.NoError(t, err)
		id2, err := s.Insert(ctx, rec("T1", 10, 0))
		require.NoError(t, err)
		assert.Greater(t, id2, id1)
	})

	t.Run("list recent is newest first", func(t *testing.T) {
		s := open(t)
		var ids []int64
		for i := 0; i < 5; i++ {
			id, err := s.Insert(ctx, rec("T1", i, time.Duration(i)*time.Minute))
			require.NoError(t, err)
			ids = append(ids, id)
		}

		got, err := s.ListRecent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i := range got {
			assert.Equal(t, ids[len(ids)-1-i], got[i].ID)
		}
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i].ID, got[i-1].ID)
		}
		assert.Equal(t, 4, got[0].EggCount)
		assert.Equal(t, base.Add(4*time.Minute), got[0].Timestamp)
		assert.Equal(t, time.UTC, got[0].Timestamp.Location())
		assert.Equal(t, "Luna", got[0].Barangay)
		assert.True(t, got[0].IntegrityValid)
		assert.False(t, got[1].IntegrityValid)
	})

	t.Run("list recent honours limit", func(t *testing.T) {
		s := open(t)
		for i := 0; i < 3; i++ {
			_, err := s.Insert(ctx, rec("T1", i, 0))
			require.NoError(t, err)
		}
		got, err := s.ListRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, 2, got[0].EggCount)
	})

	t.Run("list recent truncates above cap", func(t *testing.T) {
		s := open(t)
		for i := 0; i < MaxListLimit+5; i++ {
			_, err := s.Insert(ctx, rec("T1", 1, 0))
			require.NoError(t, err)
		}
		got, err := s.ListRecent(ctx, 1000)
		require.NoError(t, err)
		assert.Len(t, got, MaxListLimit)
	})

	t.Run("empty store", func(t *testing.T) {
		s := open(t)
		got, err := s.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		_, ok, err := s.HighestEggCount(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("highest egg count prefers earliest on tie", func(t *testing.T) {
		s := open(t)
		_, err := s.Insert(ctx, rec("A", 10, 0))
		require.NoError(t, err)
		first, err := s.Insert(ctx, rec("B", 75, time.Minute))
		require.NoError(t, err)
		_, err = s.Insert(ctx, rec("C", 40, 2*time.Minute))
		require.NoError(t, err)
		_, err = s.Insert(ctx, rec("D", 75, 3*time.Minute))
		require.NoError(t, err)

		got, ok, err := s.HighestEggCount(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, first, got.ID)
		assert.Equal(t, "B", got.TrapID)
	})

	t.Run("identical records are not deduplicated", func(t *testing.T) {
		s := open(t)
		r := rec("T1", 60, 0)
		id1, err := s.Insert(ctx, r)
		require.NoError(t, err)
		id2, err := s.Insert(ctx, r)
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)

		got, err := s.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("egg counts beyond 32 bits round trip", func(t *testing.T) {
		s := open(t)
		big := math.MaxInt32 + 1
		_, err := s.Insert(ctx, rec("T1", 75, 0))
		require.NoError(t, err)
		id, err := s.Insert(ctx, rec("T2", big, time.Minute))
		require.NoError(t, err)

		got, ok, err := s.HighestEggCount(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, big, got.EggCount)

		recent, err := s.ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, big, recent[0].EggCount)
	})

	t.Run("invalid record is a storage error", func(t *testing.T) {
		s := open(t)
		_, err := s.Insert(ctx, Record{TrapID: "T1"})
		require.ErrorIs(t, err, ErrStorage)
		_, err = s.Insert(ctx, rec("T1", -1, 0))
		require.ErrorIs(t, err, ErrStorage)
	})

	t.Run("concurrent inserts get unique ids", func(t *testing.T) {
		s := open(t)
		const writers = 16
		ids := make(chan int64, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := s.Insert(ctx, rec("T1", 1, 0))
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, writers)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, open(t).Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runContract(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(t.TempDir() + "/records.db")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore_RejectsMutation(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(t.TempDir() + "/records.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	id, err := s.Insert(ctx, Record{Timestamp: time.Now(), TrapID: "T1", TrapType: "ovitrap", GPS: "14.61,121.02", EggCount: 5})
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, `UPDATE ingestion_records SET egg_count = 0 WHERE id = ?`, id)
	require.ErrorContains(t, err, "append-only")

	_, err = s.db.ExecContext(ctx, `DELETE FROM ingestion_records WHERE id = ?`, id)
	require.ErrorContains(t, err, "append-only")

	got, ok, err := s.HighestEggCount(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, got.EggCount)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/nested/records.db"

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	id, err := s.Insert(ctx, Record{Timestamp: time.Now(), TrapID: "T1", TrapType: "ovitrap", GPS: "14.61,121.02", EggCount: 3})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxListLimit, ClampLimit(MaxListLimit+1))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, SQLitePath: t.TempDir() + "/open.db"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "cassandra"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
