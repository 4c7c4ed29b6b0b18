// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// storage, service, and both controllers import types without
// depending on each other.
package types

import "fmt"

// Student represents one stored student record.
//
// Struct tags serve three purposes:
//
//  1. db:"..."       — column names used by sqlx when scanning rows.
//  2. json:"..."     — field names in the HTTP API.
//  3. validate:"..." — rules checked by go-playground/validator.
//     nonblank and student_email are custom tags registered by the
//     validate package.
//
// Student is treated as a value. Updates never mutate a stored record in
// place; Apply builds a new Student from an old one and a patch.
type Student struct {
	ID      int     `db:"id"      json:"id"`
	Name    string  `db:"name"    json:"name"    validate:"nonblank"`
	Surname string  `db:"surname" json:"surname" validate:"nonblank"`
	Age     int     `db:"age"     json:"age"     validate:"min=16,max=100"`
	Phone   *string `db:"phone"   json:"phone"`
	Email   string  `db:"email"   json:"email"   validate:"student_email"`
}

// String renders the record on one line for console output.
func (s Student) String() string {
	phone := "none"
	if s.Phone != nil {
		phone = *s.Phone
	}
	return fmt.Sprintf("ID: %d | Name: %s %s | Age: %d | Email: %s | Phone: %s",
		s.ID, s.Name, s.Surname, s.Age, s.Email, phone)
}

// PhoneAction says what an update does with the optional phone number.
type PhoneAction int

const (
	PhoneKeep  PhoneAction = iota // leave the stored phone as it is
	PhoneSet                      // replace it with StudentPatch.PhoneValue
	PhoneClear                    // store NULL
)

// StudentPatch names the fields an update changes. A nil pointer means
// "keep the current value".
type StudentPatch struct {
	Name       *string
	Surname    *string
	Age        *int
	Email      *string
	Phone      PhoneAction
	PhoneValue string
}

// Empty reports whether the patch changes nothing.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Surname == nil && p.Age == nil &&
		p.Email == nil && p.Phone == PhoneKeep
}

// Apply returns a copy of s with the patch applied. s itself is not
// modified; the phone pointer of the result never aliases the patch.
func (s Student) Apply(p StudentPatch) Student {
	out := s
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Surname != nil {
		out.Surname = *p.Surname
	}
	if p.Age != nil {
		out.Age = *p.Age
	}
	if p.Email != nil {
		out.Email = *p.Email
	}

	switch p.Phone {
	case PhoneSet:
		phone := p.PhoneValue
		out.Phone = &phone
	case PhoneClear:
		out.Phone = nil
	}

	return out
}
