// Package storage defines the Storage interface — the contract every
// database backend satisfies — together with the errors backends return.
//
// WHY AN INTERFACE?
// ─────────────────
// The service and both controllers (console, HTTP) should not know which
// database they are talking to. Depending only on this interface means
// switching between SQLite, PostgreSQL, and MySQL is a config change.
//
// RESULT SHAPES
// ─────────────
//   - "not found" is not an error: single-record lookups return (nil, nil)
//     and list operations return an empty, non-nil slice.
//   - uniqueness violations (duplicate id or email) return an error
//     matching ErrConflict.
//   - anything else the database reports returns an *Error matching
//     ErrStorage, with the driver's error kept for errors.As.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-manager/internal/types"
)

// Storage is the database contract for student records.
//
// Every method acquires its own connection and releases it before
// returning. Implementations keep no session state between calls.
type Storage interface {
	// Add inserts s. Fails with ErrConflict when the email or the id is
	// already taken; nothing is written in that case.
	Add(ctx context.Context, s types.Student) error

	// GetAll returns every record ordered by ascending id.
	GetAll(ctx context.Context) ([]types.Student, error)

	// GetByID returns the record with that id, or nil if there is none.
	GetByID(ctx context.Context, id int) (*types.Student, error)

	// GetByEmail returns the record with exactly that email, or nil.
	GetByEmail(ctx context.Context, email string) (*types.Student, error)

	// SearchByName returns records whose name or surname contains query,
	// ignoring case. Callers reject blank queries before calling this.
	SearchByName(ctx context.Context, query string) ([]types.Student, error)

	// FilterByAge returns records with exactly that age.
	FilterByAge(ctx context.Context, age int) ([]types.Student, error)

	// Update overwrites name, surname, age, phone, and email of the row
	// with s.ID. Fails with ErrConflict when s.Email belongs to another
	// id. Reports false when no row has that id.
	Update(ctx context.Context, s types.Student) (bool, error)

	// Delete removes the row with that id and reports whether one existed.
	Delete(ctx context.Context, id int) (bool, error)

	// DeleteAll removes every row and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// Close releases the underlying database handle.
	Close() error
}

var (
	// ErrConflict is matched by every uniqueness violation.
	ErrConflict = errors.New("storage: conflict")

	// ErrStorage is matched by every infrastructural failure.
	ErrStorage = errors.New("storage: failure")
)

// ConflictError says which unique key a write collided with.
type ConflictError struct {
	Field string // "id" or "email"
	Value string
	Err   error // driver error, nil when found by the pre-check
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case "":
		return "student with this id or email already exists"
	case "email":
		return fmt.Sprintf("email %q is already in use", e.Value)
	default:
		return fmt.Sprintf("student with %s %s already exists", e.Field, e.Value)
	}
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Err }

// Error wraps a database failure with the operation that hit it.
type Error struct {
	Op  string // e.g. "GetByID: scan"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Is(target error) bool { return target == ErrStorage }

func (e *Error) Unwrap() error { return e.Err }
