// Package validate checks student fields before anything reaches storage.
//
// The three predicates (IsValidEmail, IsValidAge, IsNonEmpty) are pure:
// every input maps to a boolean, nothing is logged, nothing fails.
// Student builds on them through go-playground/validator so that the
// struct tags on types.Student and the predicates can never disagree.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-manager/internal/types"
)

// Age bounds for a student record.
const (
	MinAge = 16
	MaxAge = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// IsValidEmail reports whether s looks like local-part@domain.tld with a
// 2 to 6 letter top-level label.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidAge reports whether n is within MinAge..MaxAge.
func IsValidAge(n int) bool {
	return n >= MinAge && n <= MaxAge
}

// IsNonEmpty reports whether s has any non-whitespace content.
func IsNonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Struct validation
// ─────────────────────────────────────────────────────────────────────────────

// FieldError describes one failing field.
type FieldError struct {
	Field string // json name, e.g. "email"
	Tag   string // failing rule, e.g. "student_email"
}

func (f FieldError) String() string {
	switch f.Tag {
	case "nonblank":
		return fmt.Sprintf("field %s must not be empty", f.Field)
	case "student_email":
		return fmt.Sprintf("field %s must be a valid email address", f.Field)
	case "min", "max":
		return fmt.Sprintf("field %s must be between %d and %d", f.Field, MinAge, MaxAge)
	default:
		return fmt.Sprintf("field %s is invalid", f.Field)
	}
}

// Error lists every field that failed validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return strings.Join(msgs, ", ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Has reports whether field failed.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// A validator.Validate caches struct metadata, so one instance is shared.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names ("email") instead of Go names ("Email")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return IsNonEmpty(fl.Field().String())
	})
	mustRegister(v, "student_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

// Age returns an *Error for ages outside MinAge..MaxAge, nil otherwise.
func Age(n int) error {
	if IsValidAge(n) {
		return nil
	}
	return &Error{Fields: []FieldError{{Field: "age", Tag: "min"}}}
}

// Student checks every constrained field of s. It returns nil or an
// *Error; nothing else.
func Student(s types.Student) error {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// only InvalidValidationError is left, which means a programming error
		panic(fmt.Sprintf("validate.Student: %v", err))
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}
