package httputil

import (
	"log/slog"
	"net/http"
	"time"
)

// StatusRecorder wraps http.ResponseWriter to capture the status code and
// whether anything has been sent.
type StatusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

// NewStatusRecorder wraps w.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader captures the first status code.
func (w *StatusRecorder) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write marks the response as started.
func (w *StatusRecorder) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *StatusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *StatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the status sent, or 200 if none was sent explicitly.
func (w *StatusRecorder) Status() int {
	return w.status
}

// Written reports whether the status line has been sent.
func (w *StatusRecorder) Written() bool {
	return w.wrote
}

// AccessLog logs one line per request after next has run.
func AccessLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewStatusRecorder(w)
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}
