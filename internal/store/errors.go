package store

import "errors"

var (
	// ErrUnsupportedVersion is returned when the database file carries a
	// schema version other than SchemaVersion. There is no migration path.
	ErrUnsupportedVersion = errors.New("unsupported schema version")

	// ErrConsistency is returned when an update or delete did not affect
	// exactly one row.
	ErrConsistency = errors.New("consistency violation")

	// ErrVanished is returned by a Records view when a row listed in its
	// snapshot can no longer be read.
	ErrVanished = errors.New("record vanished from snapshot")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store closed")
)
