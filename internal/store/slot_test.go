package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoSQL = "SELECT ?"

func echo(ctx context.Context, stmt *sql.Stmt, v int) (int, error) {
	var out int
	err := stmt.QueryRowContext(ctx, v).Scan(&out)
	return out, err
}

func TestSlot_PreparesLazilyAndReuses(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	slot := NewSlot(s.DB(), echoSQL)

	st := slot.Stats()
	assert.Equal(t, echoSQL, st.Query)
	assert.Zero(t, st.Prepared)
	assert.False(t, st.Resident)

	var seen []*sql.Stmt
	for i := range 10 {
		err := slot.With(ctx, func(stmt *sql.Stmt) error {
			seen = append(seen, stmt)
			got, err := echo(ctx, stmt, i)
			assert.Equal(t, i, got)
			return err
		})
		require.NoError(t, err)
	}

	for _, stmt := range seen {
		assert.Same(t, seen[0], stmt)
	}
	st = slot.Stats()
	assert.Equal(t, int64(1), st.Prepared)
	assert.Zero(t, st.Discarded)
	assert.True(t, st.Resident)
	require.NoError(t, slot.Close())
}

func TestSlot_BodyErrorReturnsStatement(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	slot := NewSlot(s.DB(), echoSQL)
	t.Cleanup(func() { slot.Close() })

	errBoom := errors.New("boom")
	err := slot.With(ctx, func(*sql.Stmt) error { return errBoom })
	assert.Same(t, errBoom, err)

	st := slot.Stats()
	assert.True(t, st.Resident)
	assert.Equal(t, int64(1), st.Prepared)

	// The returned statement is still usable.
	require.NoError(t, slot.With(ctx, func(stmt *sql.Stmt) error {
		_, err := echo(ctx, stmt, 7)
		return err
	}))
	assert.Equal(t, int64(1), slot.Stats().Prepared)
}

func TestSlot_BodyPanicReturnsStatement(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	slot := NewSlot(s.DB(), echoSQL)
	t.Cleanup(func() { slot.Close() })

	assert.Panics(t, func() {
		_ = slot.With(context.Background(), func(*sql.Stmt) error { panic("boom") })
	})
	assert.True(t, slot.Stats().Resident)
}

func TestSlot_PrepareErrorLeavesSlotEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	slot := NewSlot(s.DB(), "SELEKT nonsense")

	called := false
	err := slot.With(context.Background(), func(*sql.Stmt) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	st := slot.Stats()
	assert.Zero(t, st.Prepared)
	assert.False(t, st.Resident)
}

func TestSlot_OccupiedOnReturnDiscards(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	slot := NewSlot(s.DB(), echoSQL)
	t.Cleanup(func() { slot.Close() })

	var outer, inner *sql.Stmt
	err := slot.With(ctx, func(stmt *sql.Stmt) error {
		outer = stmt
		// The slot is empty while we hold stmt, so this prepares a second
		// statement and parks it in the slot before we return ours.
		return slot.With(ctx, func(stmt *sql.Stmt) error {
			inner = stmt
			return nil
		})
	})
	require.NoError(t, err)
	require.NotSame(t, outer, inner)

	st := slot.Stats()
	assert.Equal(t, int64(2), st.Prepared)
	assert.Equal(t, int64(1), st.Discarded)
	assert.True(t, st.Resident)

	// The first statement back stays resident.
	require.NoError(t, slot.With(ctx, func(stmt *sql.Stmt) error {
		assert.Same(t, inner, stmt)
		return nil
	}))
}

func TestSlot_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	unused := NewSlot(s.DB(), echoSQL)
	require.NoError(t, unused.Close())
	require.NoError(t, unused.Close())

	used := NewSlot(s.DB(), echoSQL)
	require.NoError(t, used.With(ctx, func(*sql.Stmt) error { return nil }))
	require.NoError(t, used.Close())
	require.NoError(t, used.Close())
	assert.False(t, used.Stats().Resident)

	err := used.With(ctx, func(*sql.Stmt) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSlot_CloseWhileInUse(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	slot := NewSlot(s.DB(), echoSQL)

	err := slot.With(context.Background(), func(*sql.Stmt) error {
		return slot.Close()
	})
	require.NoError(t, err)
	assert.False(t, slot.Stats().Resident, "statement returned after close must be released")
}

func TestSlot_ConcurrentExclusiveUse(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	slot := NewSlot(s.DB(), echoSQL)
	t.Cleanup(func() { slot.Close() })

	const (
		workers    = 16
		iterations = 50
	)
	var (
		holders    sync.Map // *sql.Stmt -> *atomic.Int32
		violations atomic.Int32
		wg         sync.WaitGroup
	)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range iterations {
				err := slot.With(ctx, func(stmt *sql.Stmt) error {
					v, _ := holders.LoadOrStore(stmt, new(atomic.Int32))
					users := v.(*atomic.Int32)
					if users.Add(1) != 1 {
						violations.Add(1)
					}
					defer users.Add(-1)
					got, err := echo(ctx, stmt, w*iterations+i)
					if err == nil && got != w*iterations+i {
						return errors.New("wrong echo")
					}
					return err
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, violations.Load(), "a statement was used by two goroutines at once")
	st := slot.Stats()
	assert.True(t, st.Resident)
	// Every prepared statement is either resident or was discarded.
	assert.Equal(t, st.Prepared-1, st.Discarded)
}
