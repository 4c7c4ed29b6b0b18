package student

import (
	"net/http"

	"github.com/aanand-mishra/student-manager/internal/http/middleware"
)

// Register mounts every student route on mux. Each handler is wrapped by
// middleware.Instrument under the pattern it was registered with.
//
// Route table:
//
//	POST   /api/students                  → create a new student
//	GET    /api/students                  → list, ?q= search, ?age= filter
//	GET    /api/students/{id}             → get one student by ID
//	GET    /api/students/by-email/{email} → get one student by email
//	PUT    /api/students/{id}             → replace a student
//	PATCH  /api/students/{id}             → change some fields
//	DELETE /api/students/{id}             → delete a student
//	DELETE /api/students?confirm=true     → delete every student
func Register(mux *http.ServeMux, svc Service) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST /api/students", New(svc)},
		{"GET /api/students", GetList(svc)},
		{"GET /api/students/{id}", GetByID(svc)},
		{"GET /api/students/by-email/{email}", GetByEmail(svc)},
		{"PUT /api/students/{id}", Update(svc)},
		{"PATCH /api/students/{id}", Patch(svc)},
		{"DELETE /api/students/{id}", Delete(svc)},
		{"DELETE /api/students", DeleteAll(svc)},
	}

	for _, rt := range routes {
		mux.Handle(rt.pattern, middleware.Instrument(rt.pattern, rt.handler))
	}
}
