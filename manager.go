package contacts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	clog "github.com/charmbracelet/log"

	"github.com/jward/contacts/internal/logging"
	"github.com/jward/contacts/internal/store"
)

// Snapshot is the full list of people as seen right after an operation.
// Err is set when the operation or the refetch failed.
type Snapshot struct {
	Records []Record
	Err     error
}

// task is one unit of work for the worker goroutine.
type task struct {
	run func(ctx context.Context, s PeopleStore) error
	// done receives the result of run. nil for fire-and-forget tasks.
	done chan error
	// publish makes the worker refetch all records and publish a Snapshot.
	publish bool
}

// Manager owns a Store and runs every operation on it from one worker
// goroutine, in submission order. Callers never touch the Store directly.
//
// Mutations submitted with Add, Edit and Remove do not wait: the worker
// mutates, refetches all records and publishes a Snapshot as one unit.
// Ready and Do are the only blocking calls.
type Manager struct {
	dbPath    string
	storeOpts []store.Option
	logger    *clog.Logger
	open      func() (PeopleStore, error)

	mu      sync.Mutex
	cond    *sync.Cond
	pending []task
	closing bool

	ready   chan struct{}
	openErr error

	snapshots chan Snapshot
	done      chan struct{}
	closeErr  error
}

// Option configures a Manager.
type Option func(*Manager)

// WithDriver selects the SQLite driver for the Store.
func WithDriver(d Driver) Option {
	return func(m *Manager) {
		m.storeOpts = append(m.storeOpts, store.WithDriver(d))
	}
}

// WithLogger sets the logger. The default is logging.L.
func WithLogger(l *clog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithStore makes the worker use s instead of opening dbPath. The Manager
// takes ownership and closes s on Close.
func WithStore(s PeopleStore) Option {
	return func(m *Manager) {
		m.open = func() (PeopleStore, error) { return s, nil }
	}
}

// Open starts a Manager for the database at dbPath. The Store is opened on
// the worker goroutine; use Ready to wait for it. The first Snapshot is
// published as soon as the Store is open.
func Open(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath:    dbPath,
		logger:    logging.L,
		ready:     make(chan struct{}),
		snapshots: make(chan Snapshot, 1),
		done:      make(chan struct{}),
	}
	m.cond = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	if m.open == nil {
		m.open = func() (PeopleStore, error) {
			st, err := store.NewStore(m.dbPath, m.storeOpts...)
			if err != nil {
				// A nil *Store must not reach the worker as a non-nil interface.
				return nil, err
			}
			return st, nil
		}
	}
	go m.run()
	return m
}

// Ready blocks until the Store is open and returns the open error, if any.
func (m *Manager) Ready(ctx context.Context) error {
	select {
	case <-m.ready:
		return m.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshots delivers published snapshots. Only the latest unread snapshot
// is kept. The channel is closed after the worker stops.
func (m *Manager) Snapshots() <-chan Snapshot {
	return m.snapshots
}

// Add queues an insert of a new person. name and birth are stored as given;
// validate them first.
func (m *Manager) Add(name string, birth EpochDay) error {
	return m.submit(task{publish: true, run: func(ctx context.Context, s PeopleStore) error {
		id, err := s.Insert(ctx, name, birth)
		if err == nil {
			m.logger.Debug("inserted person", "id", id)
		}
		return err
	}})
}

// Edit queues an update of rec.
func (m *Manager) Edit(rec Record) error {
	return m.submit(task{publish: true, run: func(ctx context.Context, s PeopleStore) error {
		return s.Update(ctx, rec)
	}})
}

// Remove queues a delete of rec.
func (m *Manager) Remove(rec Record) error {
	return m.submit(task{publish: true, run: func(ctx context.Context, s PeopleStore) error {
		return s.Delete(ctx, rec)
	}})
}

// Refresh queues a refetch and publish without changing anything.
func (m *Manager) Refresh() error {
	return m.submit(task{publish: true, run: func(context.Context, PeopleStore) error { return nil }})
}

// Do runs fn on the worker and waits for it. If ctx ends first Do returns
// ctx.Err(), but fn still runs to completion in its turn.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, s PeopleStore) error) error {
	done := make(chan error, 1)
	if err := m.submit(task{run: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close lets queued work finish, closes the Store and stops the worker.
// Later submissions fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closing = true
	m.cond.Signal()
	m.mu.Unlock()
	<-m.done
	return m.closeErr
}

func (m *Manager) submit(t task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return ErrClosed
	}
	m.pending = append(m.pending, t)
	m.cond.Signal()
	return nil
}

// next blocks for the next task. ok is false once Close was called and the
// queue is empty.
func (m *Manager) next() (t task, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.pending) == 0 && !m.closing {
		m.cond.Wait()
	}
	if len(m.pending) == 0 {
		return task{}, false
	}
	t = m.pending[0]
	m.pending[0] = task{}
	m.pending = m.pending[1:]
	return t, true
}

func (m *Manager) run() {
	defer close(m.done)
	defer close(m.snapshots)
	ctx := context.Background()

	s, err := m.open()
	if err != nil {
		s = nil
		m.openErr = fmt.Errorf("contacts: open store: %w", err)
		m.logger.Error("open store failed", "path", m.dbPath, "err", err)
	} else {
		m.logger.Debug("opened store", "path", m.dbPath)
	}
	close(m.ready)

	if s != nil {
		m.publish(m.snapshot(ctx, s, nil))
	} else {
		m.publish(Snapshot{Err: m.openErr})
	}

	for {
		t, ok := m.next()
		if !ok {
			break
		}
		if s == nil {
			m.finish(t, m.openErr)
			if t.publish {
				m.publish(Snapshot{Err: m.openErr})
			}
			continue
		}
		err := m.exec(ctx, s, t)
		if err != nil {
			m.logger.Error("operation failed", "err", err)
		}
		m.finish(t, err)
		if t.publish {
			m.publish(m.snapshot(ctx, s, err))
		}
	}

	if s != nil {
		m.closeErr = s.Close()
		for _, st := range s.Stats() {
			m.logger.Debug("statement slot", "query", st.Query, "prepared", st.Prepared, "discarded", st.Discarded)
		}
		m.logger.Debug("closed store", "path", m.dbPath)
	}
}

// exec runs t.run, turning a panic into an error so one bad task does not
// stop the worker.
func (m *Manager) exec(ctx context.Context, s PeopleStore, t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("contacts: task panicked: %v", r)
		}
	}()
	return t.run(ctx, s)
}

func (m *Manager) finish(t task, err error) {
	if t.done != nil {
		t.done <- err
	}
}

// snapshot refetches every record. opErr is the error of the operation that
// triggered the refetch and takes precedence over a refetch error.
func (m *Manager) snapshot(ctx context.Context, s PeopleStore, opErr error) Snapshot {
	recs, err := s.All(ctx)
	var all []Record
	if err == nil {
		all, err = recs.Collect(ctx)
	}
	return Snapshot{Records: all, Err: errors.Join(opErr, err)}
}

// publish replaces any unread snapshot with snap. Only the worker calls it.
func (m *Manager) publish(snap Snapshot) {
	for {
		select {
		case m.snapshots <- snap:
			return
		default:
		}
		select {
		case <-m.snapshots:
		default:
		}
	}
}
