// Package contacts keeps a list of people, each a name and a birth date, in
// a single-table SQLite database.
//
// # Layers
//
// The internal store package owns the database file. It creates the people
// table on first open, refuses files tagged with a schema version it does
// not know, and runs inserts, updates and deletes through statement slots
// that prepare each statement once and reuse it.
//
// A Manager sits on top of the store and runs every operation on one worker
// goroutine, in the order it was submitted. Add, Edit and Remove return at
// once; the worker applies the change, reads the whole table back and
// publishes it as a Snapshot.
//
// # Usage
//
//	m := contacts.Open("contacts.db")
//	defer m.Close()
//	if err := m.Ready(ctx); err != nil { ... }
//
//	birth, _ := contacts.ParseEpochDay("1994-08-23")
//	m.Add("Ada", birth)
//
//	for snap := range m.Snapshots() {
//		if snap.Err != nil { ... }
//		render(snap.Records)
//	}
//
// Do runs a function on the worker and waits for it, for callers that need
// a result:
//
//	err := m.Do(ctx, func(ctx context.Context, s contacts.PeopleStore) error {
//		rec, found, err := s.FindByID(ctx, 1)
//		...
//	})
//
// # Dates
//
// Birth dates are stored as an EpochDay, the number of days since
// 1970-01-01. 1994-08-23 is day 9000.
//
// # Drivers
//
// Two SQLite drivers are supported: DriverSQLite3 (mattn/go-sqlite3, needs
// cgo) and DriverSQLite (modernc.org/sqlite, pure Go). Both open the file in
// WAL mode with foreign keys on and trusted_schema off.
package contacts
