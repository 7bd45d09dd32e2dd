// Package middleware provides the HTTP middleware stack: authentication,
// request logging and Prometheus instrumentation.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder wraps ResponseWriter to capture the status code and bytes
// written for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status       int
	bytesWritten int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.bytesWritten += int64(n)
	return n, err
}

// RequestLogger logs every request with method, path, status, user id and
// duration. Server errors log at warn, everything else at info.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := newStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"user_id", GetUserID(r.Context()),
			"bytes", recorder.bytesWritten,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if recorder.status >= http.StatusInternalServerError {
			slog.Warn("HTTP error", attrs...)
		} else {
			slog.Info("HTTP ok", attrs...)
		}
	})
}
