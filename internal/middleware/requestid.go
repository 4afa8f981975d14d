// Package middleware provides HTTP middleware for the gateway surfaces.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskgate/taskgate/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"

	// maxRequestIDLen bounds client-supplied IDs so a hostile caller
	// cannot bloat every log line tied to the request.
	maxRequestIDLen = 64
)

// RequestID is HTTP middleware that correlates logs across a request. A
// well-formed X-Request-ID supplied by the caller is honored so agent
// sessions can thread their own IDs through the gateway; anything else
// is replaced with a fresh UUID. The ID rides the context and is echoed
// on the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts non-empty, bounded IDs made of characters that
// are safe to embed in structured log output.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
