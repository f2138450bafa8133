// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Content types written by the helpers.
const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
	ContentTypeText = "text/plain; charset=utf-8"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with the given status code.
// The error response includes an error code and a human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteText writes a plain text response. The admin verbs answer with
// human-readable messages rather than JSON envelopes.
func WriteText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", ContentTypeText)
	w.WriteHeader(status)
	if message != "" && status != http.StatusNoContent {
		_, _ = w.Write([]byte(message))
	}
}

// WriteBody writes pre-encoded bytes with the given content type.
func WriteBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WantsJSON reports whether the request's Accept header prefers JSON.
func WantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mediaType == ContentTypeJSON || strings.HasSuffix(mediaType, "+json") {
			return true
		}
	}
	return false
}
