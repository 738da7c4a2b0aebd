// Package middleware provides HTTP middleware for Vehix.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID takes X-Request-ID from the request or mints one, echoes it on
// the response, and stows it in the context where the logger picks it up.
// Every slog line emitted while serving the request carries the same id,
// so a denied quota check or a failed transfer can be tied back to the
// exact call that triggered it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = generateID()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateID returns a 16-byte random hex string (32 chars).
func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
