// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject dependencies we use a factory function that accepts the
// service and returns a function with exactly that signature:
//
//	router.HandleFunc("POST /api/students", student.New(svc))
//
// New(svc) runs ONCE at startup; the returned handler runs on EVERY
// request.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-manager/internal/types"
	"github.com/aanand-mishra/student-manager/internal/utils/response"
)

// Service is what the handlers need from service.Students.
type Service interface {
	Add(ctx context.Context, st types.Student) error
	Get(ctx context.Context, id int) (*types.Student, error)
	GetByEmail(ctx context.Context, email string) (*types.Student, error)
	List(ctx context.Context) ([]types.Student, error)
	Search(ctx context.Context, query string) ([]types.Student, error)
	FilterByAge(ctx context.Context, age int) ([]types.Student, error)
	Update(ctx context.Context, id int, patch types.StudentPatch) (types.Student, error)
	Replace(ctx context.Context, st types.Student) error
	Delete(ctx context.Context, id int) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

var (
	errEmptyBody = errors.New("request body is empty")
	errBadID     = errors.New("invalid id: must be an integer")
	errNotFound  = errors.New("student not found")
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON), id is chosen by the client:
//
//	{ "id": 1, "name": "Ann", "surname": "Lee", "age": 20,
//	  "phone": null, "email": "ann@x.com" }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — id or email already taken
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var st types.Student
		if err := decode(r, &st); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := svc.Add(r.Context(), trimmed(st)); err != nil {
			fail(w, "error creating student", err)
			return
		}

		slog.Info("student created", slog.Int("id", st.ID))
		response.WriteJSON(w, http.StatusCreated, map[string]int{"id": st.ID})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// 404 when no student has that id.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int("id", id))

		st, err := svc.Get(r.Context(), id)
		if err != nil {
			fail(w, "error getting student", err)
			return
		}
		if st == nil {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errNotFound))
			return
		}

		response.WriteJSON(w, http.StatusOK, st)
	}
}

// GetByEmail handles GET /api/students/by-email/{email}. The match is exact.
func GetByEmail(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PathValue("email")
		slog.Info("getting a student by email", slog.String("email", email))

		st, err := svc.GetByEmail(r.Context(), email)
		if err != nil {
			fail(w, "error getting student by email", err)
			return
		}
		if st == nil {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errNotFound))
			return
		}

		response.WriteJSON(w, http.StatusOK, st)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
//	GET /api/students          → every student, ordered by id
//	GET /api/students?q=ann    → name or surname contains "ann" (any case)
//	GET /api/students?age=20   → students aged exactly 20
//
// Always returns a JSON array; [] rather than null when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var (
			students []types.Student
			err      error
		)
		switch {
		case query.Has("q"):
			q := strings.TrimSpace(query.Get("q"))
			slog.Info("searching students", slog.String("q", q))
			students, err = svc.Search(r.Context(), q)
		case query.Has("age"):
			age, convErr := strconv.Atoi(query.Get("age"))
			if convErr != nil {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(errors.New("invalid age: must be an integer")))
				return
			}
			slog.Info("filtering students by age", slog.Int("age", age))
			students, err = svc.FilterByAge(r.Context(), age)
		default:
			slog.Info("getting all students")
			students, err = svc.List(r.Context())
		}

		if err != nil {
			fail(w, "error listing students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL mutable fields. The id in the body, if any, is ignored in
// favour of the one in the path. A missing "phone" stores NULL.
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("replacing a student", slog.Int("id", id))

		var st types.Student
		if err := decode(r, &st); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		st.ID = id
		st = trimmed(st)

		if err := svc.Replace(r.Context(), st); err != nil {
			fail(w, "error replacing student", err)
			return
		}

		slog.Info("student replaced", slog.Int("id", id))
		response.WriteJSON(w, http.StatusOK, st)
	}
}

// patchRequest keeps phone raw so that an explicit null (clear) can be
// told apart from an absent key (keep).
type patchRequest struct {
	Name    *string         `json:"name"`
	Surname *string         `json:"surname"`
	Age     *int            `json:"age"`
	Email   *string         `json:"email"`
	Phone   json.RawMessage `json:"phone"`
}

func (p patchRequest) toPatch() (types.StudentPatch, error) {
	patch := types.StudentPatch{
		Name:    trimmedPtr(p.Name),
		Surname: trimmedPtr(p.Surname),
		Age:     p.Age,
		Email:   trimmedPtr(p.Email),
	}

	switch {
	case len(p.Phone) == 0:
		patch.Phone = types.PhoneKeep
	case string(p.Phone) == "null":
		patch.Phone = types.PhoneClear
	default:
		var phone string
		if err := json.Unmarshal(p.Phone, &phone); err != nil {
			return types.StudentPatch{}, fmt.Errorf("phone: %w", err)
		}
		phone = strings.TrimSpace(phone)
		if phone == "" {
			patch.Phone = types.PhoneClear
		} else {
			patch.Phone = types.PhoneSet
			patch.PhoneValue = phone
		}
	}

	return patch, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/students/{id}
// Changes only the fields present in the body:
//
//	{ "age": 21 }              → age changes, everything else kept
//	{ "phone": null }          → phone cleared
//	{ "phone": "+7 700 000" }  → phone set
//
// Returns the updated student.
// ─────────────────────────────────────────────────────────────────────────────
func Patch(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("patching a student", slog.Int("id", id))

		var req patchRequest
		if err := decode(r, &req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		patch, err := req.toPatch()
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			fail(w, "error patching student", err)
			return
		}

		slog.Info("student patched", slog.Int("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}. 404 when nothing was deleted.
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int("id", id))

		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			fail(w, "error deleting student", err)
			return
		}
		if !deleted {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errNotFound))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteAll handles DELETE /api/students?confirm=true
//
// Without confirm=true nothing is deleted and 400 is returned.
//
// Success response (200 OK):
//
//	{ "deleted": 3 }
//
// ─────────────────────────────────────────────────────────────────────────────
func DeleteAll(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("deleting all students requires confirm=true")))
			return
		}
		slog.Warn("deleting all students")

		n, err := svc.DeleteAll(r.Context())
		if err != nil {
			fail(w, "error deleting all students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
	}
}

// pathID parses {id}; on failure it writes 400 and reports false.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errBadID))
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func fail(w http.ResponseWriter, msg string, err error) {
	status := response.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, slog.String("error", err.Error()))
	}
}

func trimmed(st types.Student) types.Student {
	st.Name = strings.TrimSpace(st.Name)
	st.Surname = strings.TrimSpace(st.Surname)
	st.Email = strings.TrimSpace(st.Email)
	if st.Phone != nil {
		phone := strings.TrimSpace(*st.Phone)
		if phone == "" {
			st.Phone = nil
		} else {
			st.Phone = &phone
		}
	}
	return st
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
