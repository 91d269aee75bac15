package store

import "context"

// PeopleStore is the operation surface that the worker drives. *Store is
// the only production implementation.
type PeopleStore interface {
	All(ctx context.Context) (*Records, error)
	FindByID(ctx context.Context, id int64) (Record, bool, error)
	Insert(ctx context.Context, name string, birth EpochDay) (int64, error)
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, rec Record) error
	Stats() []SlotStats
	Close() error
}

// Compile-time check: *Store satisfies PeopleStore.
var _ PeopleStore = (*Store)(nil)
