package store

import (
	"context"
	"fmt"
	"iter"
	"sync"
)

// Records is the result of Store.All: a fixed list of ids whose rows are
// read on first access and cached for the life of the view.
//
// The ids never change after All returns. A row deleted since then makes
// At fail with ErrVanished.
type Records struct {
	store *Store
	ids   []int64

	mu   sync.Mutex
	memo []*Record
}

func newRecords(s *Store, ids []int64) *Records {
	return &Records{store: s, ids: ids, memo: make([]*Record, len(ids))}
}

// Len returns the number of records in the snapshot.
func (r *Records) Len() int {
	return len(r.ids)
}

// ID returns the id at index i without reading the row. i must be in
// [0, Len()).
func (r *Records) ID(i int) int64 {
	return r.ids[i]
}

// At returns the record at index i, reading it on first access.
func (r *Records) At(ctx context.Context, i int) (Record, error) {
	if i < 0 || i >= len(r.ids) {
		return Record{}, fmt.Errorf("record index %d out of range [0, %d)", i, len(r.ids))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.memo[i]; rec != nil {
		return *rec, nil
	}
	rec, found, err := r.store.FindByID(ctx, r.ids[i])
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, fmt.Errorf("%w: id %d", ErrVanished, r.ids[i])
	}
	r.memo[i] = &rec
	return rec, nil
}

// Each yields every record in order, stopping after the first error.
func (r *Records) Each(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for i := range r.ids {
			rec, err := r.At(ctx, i)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Collect reads every record into a slice.
func (r *Records) Collect(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, len(r.ids))
	for rec, err := range r.Each(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
