package contacts

import (
	"time"

	"github.com/jward/contacts/internal/store"
)

// Public type aliases for internal store types used in the Manager API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type PeopleStore = store.PeopleStore
type Record = store.Record
type Records = store.Records
type EpochDay = store.EpochDay
type Driver = store.Driver
type SlotStats = store.SlotStats

const (
	DriverSQLite3 = store.DriverSQLite3
	DriverSQLite  = store.DriverSQLite
)

// Errors reported by the store, re-exported for errors.Is checks.
var (
	ErrUnsupportedVersion = store.ErrUnsupportedVersion
	ErrConsistency        = store.ErrConsistency
	ErrVanished           = store.ErrVanished
	ErrClosed             = store.ErrClosed
)

// ParseEpochDay parses a YYYY-MM-DD date.
func ParseEpochDay(s string) (EpochDay, error) {
	return store.ParseEpochDay(s)
}

// ParseDriver maps a driver name to a Driver.
func ParseDriver(name string) (Driver, error) {
	return store.ParseDriver(name)
}

// EpochDayOf returns the day of t's calendar date, read in t's own location.
func EpochDayOf(t time.Time) EpochDay {
	return store.EpochDayOf(t)
}
