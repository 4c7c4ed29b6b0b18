// Package service is the single entry point both controllers (console
// and HTTP) use for student records.
//
// It owns two rules the storage layer does not: input is validated
// before any storage call, and updates are computed from the stored
// record plus a patch instead of mutating a record in place.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/student-manager/internal/metrics"
	"github.com/aanand-mishra/student-manager/internal/storage"
	"github.com/aanand-mishra/student-manager/internal/types"
	"github.com/aanand-mishra/student-manager/internal/validate"
)

var (
	// ErrNotFound is returned by operations that need an existing record
	// (update, replace) when the id matches nothing.
	ErrNotFound = errors.New("student not found")

	// ErrEmptyQuery rejects a blank name search.
	ErrEmptyQuery = errors.New("search query must not be empty")
)

// Students validates input and forwards it to storage.
type Students struct {
	store storage.Storage
	log   *slog.Logger
}

// New returns a Students service over store that logs to log.
func New(store storage.Storage, log *slog.Logger) *Students {
	return &Students{store: store, log: log}
}

// Add validates s and stores it.
func (s *Students) Add(ctx context.Context, st types.Student) error {
	if err := validate.Student(st); err != nil {
		return s.done("add", err)
	}
	if err := s.store.Add(ctx, st); err != nil {
		return s.done("add", err)
	}

	s.log.Info("student added", slog.Int("id", st.ID))
	return s.done("add", nil)
}

// Get returns the record with that id, or nil.
func (s *Students) Get(ctx context.Context, id int) (*types.Student, error) {
	st, err := s.store.GetByID(ctx, id)
	return st, s.done("get", err)
}

// GetByEmail returns the record with exactly that email, or nil.
func (s *Students) GetByEmail(ctx context.Context, email string) (*types.Student, error) {
	st, err := s.store.GetByEmail(ctx, email)
	return st, s.done("get_by_email", err)
}

// List returns all records ordered by id.
func (s *Students) List(ctx context.Context) ([]types.Student, error) {
	students, err := s.store.GetAll(ctx)
	return students, s.done("list", err)
}

// Search finds records whose name or surname contains query.
func (s *Students) Search(ctx context.Context, query string) ([]types.Student, error) {
	if !validate.IsNonEmpty(query) {
		return nil, s.done("search", ErrEmptyQuery)
	}
	students, err := s.store.SearchByName(ctx, query)
	return students, s.done("search", err)
}

// FilterByAge returns records of exactly that age. Ages no record can
// have are rejected rather than answered with an empty list.
func (s *Students) FilterByAge(ctx context.Context, age int) ([]types.Student, error) {
	if err := validate.Age(age); err != nil {
		return nil, s.done("filter_by_age", err)
	}
	students, err := s.store.FilterByAge(ctx, age)
	return students, s.done("filter_by_age", err)
}

// Update applies patch to the stored record with that id and returns
// the new value. Nothing is written when the result fails validation.
func (s *Students) Update(ctx context.Context, id int, patch types.StudentPatch) (types.Student, error) {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return types.Student{}, s.done("update", err)
	}
	if cur == nil {
		return types.Student{}, s.done("update", ErrNotFound)
	}

	next := cur.Apply(patch)
	if err := s.replace(ctx, next); err != nil {
		return types.Student{}, s.done("update", err)
	}

	s.log.Info("student updated", slog.Int("id", id))
	return next, s.done("update", nil)
}

// Replace overwrites every mutable field of the record with st.ID.
func (s *Students) Replace(ctx context.Context, st types.Student) error {
	if err := s.replace(ctx, st); err != nil {
		return s.done("replace", err)
	}

	s.log.Info("student replaced", slog.Int("id", st.ID))
	return s.done("replace", nil)
}

func (s *Students) replace(ctx context.Context, st types.Student) error {
	if err := validate.Student(st); err != nil {
		return err
	}

	ok, err := s.store.Update(ctx, st)
	if err != nil {
		return err
	}
	if !ok {
		// deleted between the read and the write
		return ErrNotFound
	}
	return nil
}

// Delete removes the record with that id and reports whether it existed.
func (s *Students) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, s.done("delete", err)
	}

	if ok {
		metrics.StudentsDeleted.Inc()
		s.log.Info("student deleted", slog.Int("id", id))
	}
	return ok, s.done("delete", nil)
}

// DeleteAll removes every record. Callers are expected to have asked for
// confirmation first.
func (s *Students) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, s.done("delete_all", err)
	}

	metrics.StudentsDeleted.Add(float64(n))
	s.log.Warn("all students deleted", slog.Int64("count", n))
	return n, s.done("delete_all", nil)
}

// done records the outcome of op and hands err back unchanged.
func (s *Students) done(op string, err error) error {
	result := Result(err)
	metrics.StudentOperations.WithLabelValues(op, result).Inc()

	switch result {
	case metrics.ResultError:
		s.log.Error("student operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
	case metrics.ResultInvalid, metrics.ResultConflict, metrics.ResultNotFound:
		s.log.Debug("student operation rejected",
			slog.String("op", op),
			slog.String("result", result),
			slog.String("error", err.Error()))
	}
	return err
}

// Result classifies err into one of the metrics.Result* labels.
func Result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, validate.ErrInvalid), errors.Is(err, ErrEmptyQuery):
		return metrics.ResultInvalid
	case errors.Is(err, storage.ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
