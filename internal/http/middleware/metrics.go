// Package middleware holds net/http middleware shared by the API routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aanand-mishra/student-manager/internal/metrics"
)

// statusRecorder remembers the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument times every request to one route. pattern is the route as
// registered ("GET /api/students/{id}") and becomes the path label, so
// /api/students/1 and /api/students/2 share one series.
func Instrument(pattern string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.APIRequestDuration.
			WithLabelValues(pattern, r.Method, strconv.Itoa(rec.status)).
			Observe(elapsed.Seconds())

		slog.Debug("request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", elapsed))
	})
}
