// Package sqlstore implements storage.Storage on top of sqlx for any SQL
// database. The dialect packages (sqlite, postgres, mysql) supply the
// driver name, the table definition, and a way to recognise uniqueness
// violations; everything else lives here.
//
// Queries are written once with ? placeholders and rebound by sqlx for
// drivers that expect $1, $2, ... (PostgreSQL).
//
// CONNECTIONS
// ───────────
// Each operation takes one connection with Connx and closes it with a
// deferred Close, so the connection goes back on every exit path,
// including errors. With MaxIdleConns at 0 (the default) the pool keeps
// nothing between calls and every operation opens a fresh connection.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/aanand-mishra/student-manager/internal/storage"
	"github.com/aanand-mishra/student-manager/internal/types"
)

// Dialect is what a database backend has to provide.
type Dialect struct {
	// DriverName is the database/sql driver, e.g. "sqlite3".
	DriverName string

	// Schema creates the students table if it is missing. It must be a
	// single statement so drivers without multi-statement support run it.
	Schema string

	// Conflict reports whether err is a uniqueness violation and, when
	// the driver says so, which column ("id" or "email") caused it.
	Conflict func(err error) (field string, ok bool)

	// Lower is the SQL function that lower-cases a column for name
	// search. It must fold non-ASCII letters the way strings.ToLower
	// does. Empty means LOWER.
	Lower string
}

func (d Dialect) lower() string {
	if d.Lower == "" {
		return "LOWER"
	}
	return d.Lower
}

// Options tune the connection pool.
type Options struct {
	// MaxIdleConns is passed to sql.DB.SetMaxIdleConns.
	MaxIdleConns int
}

// Store is the dialect-independent storage.Storage implementation.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	q       queries
}

var _ storage.Storage = (*Store)(nil)

const columns = "id, name, surname, age, phone, email"

// queries holds the statements already rebound for the dialect.
type queries struct {
	emailExists      string
	emailExistsOther string
	insert           string
	selectAll        string
	selectByID       string
	selectByEmail    string
	searchByName     string
	filterByAge      string
	update           string
	deleteByID       string
	deleteAll        string
}

func newQueries(db *sqlx.DB, lower string) queries {
	return queries{
		emailExists:      db.Rebind("SELECT COUNT(*) FROM students WHERE email = ?"),
		emailExistsOther: db.Rebind("SELECT COUNT(*) FROM students WHERE email = ? AND id <> ?"),
		insert:           db.Rebind("INSERT INTO students (" + columns + ") VALUES (?, ?, ?, ?, ?, ?)"),
		selectAll:        "SELECT " + columns + " FROM students ORDER BY id",
		selectByID:       db.Rebind("SELECT " + columns + " FROM students WHERE id = ?"),
		selectByEmail:    db.Rebind("SELECT " + columns + " FROM students WHERE email = ?"),
		searchByName: db.Rebind("SELECT " + columns + " FROM students" +
			" WHERE " + lower + "(name) LIKE ? ESCAPE '!' OR " + lower + "(surname) LIKE ? ESCAPE '!'" +
			" ORDER BY id"),
		filterByAge: db.Rebind("SELECT " + columns + " FROM students WHERE age = ? ORDER BY id"),
		update:      db.Rebind("UPDATE students SET name = ?, surname = ?, age = ?, phone = ?, email = ? WHERE id = ?"),
		deleteByID:  db.Rebind("DELETE FROM students WHERE id = ?"),
		deleteAll:   "DELETE FROM students",
	}
}

// Open connects with the dialect's driver, verifies the connection, and
// creates the students table if needed.
func Open(ctx context.Context, d Dialect, dsn string, opts Options) (*Store, error) {
	db, err := sqlx.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: open %s: %w", d.DriverName, err)
	}
	db.SetMaxIdleConns(opts.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore.Open: ping %s: %w", d.DriverName, err)
	}

	if _, err := db.ExecContext(ctx, d.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore.Open: create table: %w", err)
	}

	return &Store{db: db, dialect: d, q: newQueries(db, d.lower())}, nil
}

// DB exposes the handle for tests and tooling.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close releases the pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// withConn runs fn on a connection of its own and always returns it.
func (s *Store) withConn(ctx context.Context, op string, fn func(conn *sqlx.Conn) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fail(op+": connect", err)
	}
	defer conn.Close()

	return fn(conn)
}

func fail(op string, err error) error {
	return &storage.Error{Op: op, Err: err}
}

// writeErr turns a failed INSERT/UPDATE into a conflict when the driver
// reports a uniqueness violation.
func (s *Store) writeErr(op string, st types.Student, err error) error {
	field, ok := s.dialect.Conflict(err)
	if !ok {
		return fail(op, err)
	}

	c := &storage.ConflictError{Field: field, Err: err}
	switch field {
	case "id":
		c.Value = strconv.Itoa(st.ID)
	case "email":
		c.Value = st.Email
	}
	return c
}

// Add rejects a taken email before inserting; a duplicate id surfaces
// from the driver as a ConflictError.
func (s *Store) Add(ctx context.Context, st types.Student) error {
	return s.withConn(ctx, "Add", func(conn *sqlx.Conn) error {
		var n int
		if err := conn.GetContext(ctx, &n, s.q.emailExists, st.Email); err != nil {
			return fail("Add: check email", err)
		}
		if n > 0 {
			return &storage.ConflictError{Field: "email", Value: st.Email}
		}

		_, err := conn.ExecContext(ctx, s.q.insert,
			st.ID, st.Name, st.Surname, st.Age, st.Phone, st.Email)
		if err != nil {
			return s.writeErr("Add: exec", st, err)
		}
		return nil
	})
}

// GetAll returns every record ordered by id.
func (s *Store) GetAll(ctx context.Context) ([]types.Student, error) {
	return s.list(ctx, "GetAll", s.q.selectAll)
}

func (s *Store) GetByID(ctx context.Context, id int) (*types.Student, error) {
	return s.one(ctx, "GetByID", s.q.selectByID, id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*types.Student, error) {
	return s.one(ctx, "GetByEmail", s.q.selectByEmail, email)
}

// SearchByName matches query as a literal, case-insensitive substring
// of name or surname, folding case with the dialect's Lower function.
func (s *Store) SearchByName(ctx context.Context, query string) ([]types.Student, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.list(ctx, "SearchByName", s.q.searchByName, pattern, pattern)
}

func (s *Store) FilterByAge(ctx context.Context, age int) ([]types.Student, error) {
	return s.list(ctx, "FilterByAge", s.q.filterByAge, age)
}

// Update overwrites the mutable fields of the record with st.ID and
// reports whether such a record existed.
func (s *Store) Update(ctx context.Context, st types.Student) (bool, error) {
	var updated bool
	err := s.withConn(ctx, "Update", func(conn *sqlx.Conn) error {
		var n int
		if err := conn.GetContext(ctx, &n, s.q.emailExistsOther, st.Email, st.ID); err != nil {
			return fail("Update: check email", err)
		}
		if n > 0 {
			return &storage.ConflictError{Field: "email", Value: st.Email}
		}

		res, err := conn.ExecContext(ctx, s.q.update,
			st.Name, st.Surname, st.Age, st.Phone, st.Email, st.ID)
		if err != nil {
			return s.writeErr("Update: exec", st, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fail("Update: rows affected", err)
		}
		updated = affected > 0
		return nil
	})
	return updated, err
}

func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	affected, err := s.exec(ctx, "Delete", s.q.deleteByID, id)
	return affected > 0, err
}

// DeleteAll removes every record and returns how many there were.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "DeleteAll", s.q.deleteAll)
}

// one runs a single-row query; no row is a nil result, not an error.
func (s *Store) one(ctx context.Context, op, query string, args ...any) (*types.Student, error) {
	var (
		st    types.Student
		found bool
	)
	err := s.withConn(ctx, op, func(conn *sqlx.Conn) error {
		err := conn.GetContext(ctx, &st, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fail(op+": scan", err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, err
	}
	return &st, nil
}

// list runs a multi-row query. The result is never nil.
func (s *Store) list(ctx context.Context, op, query string, args ...any) ([]types.Student, error) {
	students := make([]types.Student, 0)
	err := s.withConn(ctx, op, func(conn *sqlx.Conn) error {
		if err := conn.SelectContext(ctx, &students, query, args...); err != nil {
			return fail(op+": select", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	var affected int64
	err := s.withConn(ctx, op, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return fail(op+": exec", err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fail(op+": rows affected", err)
		}
		return nil
	})
	return affected, err
}

// likeEscaper makes %, _ and the escape character itself match literally
// under ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
