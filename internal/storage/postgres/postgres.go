// Package postgres provides the PostgreSQL backend for storage.Storage,
// using lib/pq through sqlx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/storage/sqlstore"
)

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id      INTEGER PRIMARY KEY,
		name    TEXT    NOT NULL,
		surname TEXT    NOT NULL,
		age     INTEGER NOT NULL CHECK (age BETWEEN 16 AND 100),
		phone   TEXT,
		email   TEXT    NOT NULL,
		CONSTRAINT students_email_key UNIQUE (email)
	)
`

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = pq.ErrorCode("23505")

// Dialect describes PostgreSQL to sqlstore. Its LOWER is locale-aware,
// so name search keeps the default.
var Dialect = sqlstore.Dialect{
	DriverName: "postgres",
	Schema:     schema,
	Conflict:   conflict,
}

// Postgres is the concrete PostgreSQL-backed storage.Storage.
type Postgres struct {
	*sqlstore.Store
}

// New connects to the database named by cfg.Storage.DSN.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	s, err := sqlstore.Open(ctx, Dialect, cfg.Storage.DSN, sqlstore.Options{
		MaxIdleConns: cfg.Storage.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres.New: %w", err)
	}
	return &Postgres{Store: s}, nil
}

func conflict(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return "", false
	}
	return constraintField(pqErr.Constraint), true
}

// constraintField maps the default constraint names PostgreSQL gives the
// table's keys back to a column.
func constraintField(constraint string) string {
	switch {
	case constraint == "students_pkey":
		return "id"
	case strings.Contains(constraint, "email"):
		return "email"
	}
	return ""
}
