// Package sqlite provides the SQLite backend for storage.Storage.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is the default backend and the one the tests run against.
//
// The package registers its own driver, "sqlite3_students": the stock
// go-sqlite3 driver plus a go_lower SQL function. SQLite's built-in
// LOWER only folds ASCII, so "Анна" would never match "анна" in a name
// search. go-sqlite3 is also used directly to read the constraint codes
// out of sqlite3.Error.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/storage/sqlstore"
)

// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
// startup. If the table already exists nothing happens.
//
// id is an INTEGER PRIMARY KEY without AUTOINCREMENT: ids are chosen by
// the caller, never generated.
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id      INTEGER PRIMARY KEY,
		name    TEXT    NOT NULL,
		surname TEXT    NOT NULL,
		age     INTEGER NOT NULL CHECK (age BETWEEN 16 AND 100),
		phone   TEXT,
		email   TEXT    NOT NULL UNIQUE
	)
`

const (
	driverName = "sqlite3_students"
	lowerFunc  = "go_lower"
)

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(lowerFunc, strings.ToLower, true)
		},
	})
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Dialect describes SQLite to sqlstore.
var Dialect = sqlstore.Dialect{
	DriverName: driverName,
	Schema:     schema,
	Conflict:   conflict,
	Lower:      lowerFunc,
}

// SQLite is the concrete SQLite-backed storage.Storage.
type SQLite struct {
	*sqlstore.Store
}

// New opens the SQLite database file named by cfg.Storage.DSN, creating
// the file and the students table if they do not exist yet.
func New(ctx context.Context, cfg *config.Config) (*SQLite, error) {
	s, err := sqlstore.Open(ctx, Dialect, cfg.Storage.DSN, sqlstore.Options{
		MaxIdleConns: cfg.Storage.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}
	return &SQLite{Store: s}, nil
}

// conflict recognises PRIMARY KEY and UNIQUE violations. CHECK and NOT
// NULL failures are also SQLITE_CONSTRAINT but are not conflicts.
func conflict(err error) (string, bool) {
	var serr sqlite3.Error
	if !errors.As(err, &serr) || serr.Code != sqlite3.ErrConstraint {
		return "", false
	}

	switch serr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey:
		return "id", true
	case sqlite3.ErrConstraintUnique:
		// message looks like "UNIQUE constraint failed: students.email"
		msg := serr.Error()
		switch {
		case strings.Contains(msg, "students.email"):
			return "email", true
		case strings.Contains(msg, "students.id"):
			return "id", true
		}
		return "", true
	}
	return "", false
}
