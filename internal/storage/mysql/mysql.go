// Package mysql provides the MySQL backend for storage.Storage.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/storage/sqlstore"
)

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id      INT          NOT NULL PRIMARY KEY,
		name    VARCHAR(100) NOT NULL,
		surname VARCHAR(100) NOT NULL,
		age     INT          NOT NULL CHECK (age BETWEEN 16 AND 100),
		phone   VARCHAR(32)  NULL,
		email   VARCHAR(254) NOT NULL,
		UNIQUE KEY email (email)
	)
`

// erDupEntry is ER_DUP_ENTRY.
const erDupEntry = 1062

// Dialect describes MySQL to sqlstore. LOWER folds any utf8mb4 text,
// so name search keeps the default.
var Dialect = sqlstore.Dialect{
	DriverName: "mysql",
	Schema:     schema,
	Conflict:   conflict,
}

// MySQL is the concrete MySQL-backed storage.Storage.
type MySQL struct {
	*sqlstore.Store
}

// New connects to the database named by cfg.Storage.DSN.
func New(ctx context.Context, cfg *config.Config) (*MySQL, error) {
	dsn, err := prepareDSN(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: %w", err)
	}

	s, err := sqlstore.Open(ctx, Dialect, dsn, sqlstore.Options{
		MaxIdleConns: cfg.Storage.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("mysql.New: %w", err)
	}
	return &MySQL{Store: s}, nil
}

// prepareDSN turns on clientFoundRows. Without it MySQL reports an UPDATE
// that rewrites a row with identical values as 0 rows affected, which
// would read as "no such id".
func prepareDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	c.ClientFoundRows = true
	return c.FormatDSN(), nil
}

func conflict(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != erDupEntry {
		return "", false
	}
	return keyField(myErr.Message), true
}

// keyField reads the key name out of
// "Duplicate entry 'x' for key 'students.PRIMARY'" (8.0) or
// "Duplicate entry 'x' for key 'PRIMARY'" (5.7).
func keyField(msg string) string {
	i := strings.LastIndex(msg, "for key ")
	if i < 0 {
		return ""
	}
	key := strings.Trim(msg[i+len("for key "):], "'`")
	if _, after, ok := strings.Cut(key, "."); ok {
		key = after
	}

	switch key {
	case "PRIMARY":
		return "id"
	case "email":
		return "email"
	}
	return ""
}
