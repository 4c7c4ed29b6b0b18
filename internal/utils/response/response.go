// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers —
// they always know what error responses look like.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/student-manager/internal/service"
	"github.com/aanand-mishra/student-manager/internal/storage"
	"github.com/aanand-mishra/student-manager/internal/validate"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, an id…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field name must not be empty" }
//
// Validation failures additionally list the failing fields:
//
//	{ "status": "error", "error": "...", "fields": ["name", "age"] }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string   `json:"status"`
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts a *validate.Error into a Response listing
// every failing field.
func ValidationError(verr *validate.Error) Response {
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}

	return Response{
		Status: StatusError,
		Error:  verr.Error(),
		Fields: fields,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// WriteError picks the status code from the error taxonomy:
//
//	validation failure  → 400 Bad Request
//	uniqueness conflict → 409 Conflict
//	record not found    → 404 Not Found
//	anything else       → 500 Internal Server Error
//
// Storage failures are reported without the driver's message so internal
// details (DSNs, SQL) do not leak to clients. It returns the status it
// wrote, for logging.
// ─────────────────────────────────────────────────────────────────────────────
func WriteError(w http.ResponseWriter, err error) int {
	var verr *validate.Error

	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ValidationError(verr))
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmptyQuery):
		WriteJSON(w, http.StatusBadRequest, GeneralError(err))
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrConflict):
		WriteJSON(w, http.StatusConflict, GeneralError(err))
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, GeneralError(err))
		return http.StatusNotFound
	default:
		WriteJSON(w, http.StatusInternalServerError,
			GeneralError(errors.New("internal storage error")))
		return http.StatusInternalServerError
	}
}
