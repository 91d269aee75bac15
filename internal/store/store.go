package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	insertPersonSQL = "INSERT INTO people (name, birth) VALUES (?, ?)"
	updatePersonSQL = "UPDATE people SET name = ?, birth = ? WHERE id = ?"
	deletePersonSQL = "DELETE FROM people WHERE id = ?"
)

// Store is the SQLite data access layer for the people table. Writes go
// through pooled statements, one Slot per statement kind. Reads are ad hoc.
type Store struct {
	db *sql.DB

	insert *Slot
	update *Slot
	delete *Slot

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures NewStore.
type Option func(*storeOptions)

type storeOptions struct {
	driver Driver
}

// WithDriver selects the SQLite driver. The default is DriverSQLite3.
func WithDriver(d Driver) Option {
	return func(o *storeOptions) {
		o.driver = d
	}
}

// NewStore opens the database at dbPath, creating the schema on a fresh
// file. A file with another schema version fails with ErrUnsupportedVersion.
func NewStore(dbPath string, opts ...Option) (*Store, error) {
	o := storeOptions{driver: DriverSQLite3}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := openDB(dbPath, o.driver)
	if err != nil {
		return nil, err
	}
	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		db:     db,
		insert: NewSlot(db, insertPersonSQL),
		update: NewSlot(db, updatePersonSQL),
		delete: NewSlot(db, deletePersonSQL),
	}, nil
}

// Close releases pooled statements and the database. Only the first call
// does anything; later calls return nil.
func (s *Store) Close() error {
	first := false
	s.closeOnce.Do(func() {
		first = true
		s.closed.Store(true)
		s.closeErr = errors.Join(
			s.insert.Close(),
			s.update.Close(),
			s.delete.Close(),
			s.db.Close(),
		)
	})
	if !first {
		return nil
	}
	return s.closeErr
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats reports the insert, update and delete slot counters, in that order.
func (s *Store) Stats() []SlotStats {
	return []SlotStats{s.insert.Stats(), s.update.Stats(), s.delete.Stats()}
}

// All snapshots the ids of every person in primary-key order. Rows are read
// lazily by the returned view.
func (s *Store) All(ctx context.Context) (*Records, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM people ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan person id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return newRecords(s, ids), nil
}

// FindByID returns the person with id. found is false when no such row
// exists.
func (s *Store) FindByID(ctx context.Context, id int64) (rec Record, found bool, err error) {
	if s.closed.Load() {
		return Record{}, false, ErrClosed
	}
	var birth int64
	err = s.db.QueryRowContext(ctx,
		"SELECT id, name, birth FROM people WHERE id = ?", id,
	).Scan(&rec.ID, &rec.Name, &birth)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("person by id: %w", err)
	}
	rec.Birth = EpochDay(birth)
	return rec, true, nil
}

// Insert adds a person and returns the id SQLite assigned. name and birth
// are stored as given.
func (s *Store) Insert(ctx context.Context, name string, birth EpochDay) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var id int64
	err := s.insert.With(ctx, func(stmt *sql.Stmt) error {
		res, err := stmt.ExecContext(ctx, name, int64(birth))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return id, nil
}

// Update rewrites the name and birth of rec.ID. It fails with ErrConsistency
// unless exactly one row changed.
func (s *Store) Update(ctx context.Context, rec Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.update.With(ctx, func(stmt *sql.Stmt) error {
		res, err := stmt.ExecContext(ctx, rec.Name, int64(rec.Birth), rec.ID)
		if err != nil {
			return err
		}
		return expectOneRow(res, "update", rec.ID)
	})
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return nil
}

// Delete removes rec.ID. It fails with ErrConsistency unless exactly one
// row was removed.
func (s *Store) Delete(ctx context.Context, rec Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.delete.With(ctx, func(stmt *sql.Stmt) error {
		res, err := stmt.ExecContext(ctx, rec.ID)
		if err != nil {
			return err
		}
		return expectOneRow(res, "delete", rec.ID)
	})
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("%w: %s of id %d affected %d rows", ErrConsistency, op, id, n)
	}
	return nil
}
