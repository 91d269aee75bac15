package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver selects the SQLite implementation behind a Store.
type Driver string

const (
	// DriverSQLite3 is github.com/mattn/go-sqlite3 (cgo). It is the default.
	DriverSQLite3 Driver = "sqlite3"
	// DriverSQLite is modernc.org/sqlite (pure Go).
	DriverSQLite Driver = "sqlite"
)

// hookedSQLite3 is mattn's driver registered with a ConnectHook that applies
// connPragmas to every new connection in the pool.
const hookedSQLite3 = "sqlite3_contacts"

// connPragmas are per-connection settings. foreign_keys and trusted_schema
// do nothing for a single table; they fix the posture for later versions.
var connPragmas = []struct{ name, value string }{
	{"foreign_keys", "1"},
	{"trusted_schema", "0"},
}

func init() {
	sql.Register(hookedSQLite3, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, p := range connPragmas {
				if _, err := conn.Exec("PRAGMA "+p.name+" = "+p.value, nil); err != nil {
					return fmt.Errorf("pragma %s: %w", p.name, err)
				}
			}
			return nil
		},
	})
}

// ParseDriver maps a driver name to a Driver. The empty string selects the
// default.
func ParseDriver(name string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(name))) {
	case "", DriverSQLite3:
		return DriverSQLite3, nil
	case DriverSQLite:
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unknown driver %q (want %s or %s)", name, DriverSQLite3, DriverSQLite)
	}
}

// openDB opens dbPath with WAL journaling, a busy timeout and connPragmas
// applied to each pooled connection.
func openDB(dbPath string, d Driver) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch d {
	case "", DriverSQLite3:
		db, err = sql.Open(hookedSQLite3, dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	case DriverSQLite:
		params := []string{"_pragma=journal_mode(WAL)", "_pragma=busy_timeout(30000)"}
		for _, p := range connPragmas {
			params = append(params, fmt.Sprintf("_pragma=%s(%s)", p.name, p.value))
		}
		db, err = sql.Open(string(DriverSQLite), dbPath+"?"+strings.Join(params, "&"))
	default:
		return nil, fmt.Errorf("unknown driver %q", d)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
