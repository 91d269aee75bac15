package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
)

// Preparer compiles SQL into a reusable statement. *sql.DB and *sql.Conn
// satisfy it.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Slot holds at most one prepared statement for a single fixed query and
// hands it to one caller at a time.
//
// A caller takes ownership by swapping the slot empty, so two goroutines can
// never run the same *sql.Stmt. Under contention the loser prepares its own
// statement instead of waiting. On return only the first statement back is
// kept; any other is closed.
type Slot struct {
	db    Preparer
	query string

	stmt   atomic.Pointer[sql.Stmt]
	closed atomic.Bool

	prepared  atomic.Int64
	discarded atomic.Int64
}

// SlotStats is a point-in-time view of a Slot's counters.
type SlotStats struct {
	Query     string `json:"query" yaml:"query"`
	Prepared  int64  `json:"prepared" yaml:"prepared"`
	Discarded int64  `json:"discarded" yaml:"discarded"`
	Resident  bool   `json:"resident" yaml:"resident"`
}

// NewSlot returns an empty slot for query. Nothing is prepared until the
// first With call.
func NewSlot(db Preparer, query string) *Slot {
	return &Slot{db: db, query: query}
}

// With runs body with exclusive use of the slot's statement, preparing one
// if the slot is empty. The statement goes back to the slot when body
// returns, including when body fails or panics. body must not keep the
// statement after it returns. Errors from body are returned unchanged.
func (s *Slot) With(ctx context.Context, body func(stmt *sql.Stmt) error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	stmt := s.stmt.Swap(nil)
	if stmt == nil {
		var err error
		stmt, err = s.db.PrepareContext(ctx, s.query)
		if err != nil {
			return fmt.Errorf("prepare %q: %w", s.query, err)
		}
		s.prepared.Add(1)
	}
	defer s.put(stmt)
	return body(stmt)
}

// put returns stmt to the slot. If the slot is already occupied the
// occupant stays and stmt is closed.
func (s *Slot) put(stmt *sql.Stmt) {
	if !s.stmt.CompareAndSwap(nil, stmt) {
		s.discarded.Add(1)
		stmt.Close()
		return
	}
	// Close may have emptied the slot between our check in With and now.
	if s.closed.Load() {
		if resident := s.stmt.Swap(nil); resident != nil {
			resident.Close()
		}
	}
}

// Close releases the resident statement, if any. It is safe to call more
// than once and on a slot that was never used.
func (s *Slot) Close() error {
	s.closed.Store(true)
	if stmt := s.stmt.Swap(nil); stmt != nil {
		return stmt.Close()
	}
	return nil
}

// Stats reports the slot's counters.
func (s *Slot) Stats() SlotStats {
	return SlotStats{
		Query:     s.query,
		Prepared:  s.prepared.Load(),
		Discarded: s.discarded.Load(),
		Resident:  s.stmt.Load() != nil,
	}
}
