// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/use-overseer/Orquesta/internal/auth"
	"github.com/use-overseer/Orquesta/pkg/metrics"
)

// corsMaxAgeSeconds caches CORS preflight responses for a day.
const corsMaxAgeSeconds = 86400

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Call the next handler
		next.ServeHTTP(wrapped, r)

		// Record metrics
		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)
	}
}

// RequireToken guards a route group with bearer-token auth. A missing or
// malformed Authorization header is 401; a token the manager rejects is
// 403. The admin secret passes too, so operators can exercise the engine
// endpoints without minting themselves a token first.
func RequireToken(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "api.auth"
			token := auth.ExtractBearer(r.Header.Get("Authorization"))
			if token == "" {
				metrics.RecordAuthFailure()
				writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
				return
			}
			if m.VerifyAdmin(token) == nil {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := m.Validate(r.Context(), token); err != nil {
				writeError(w, http.StatusForbidden, "forbidden", WrapKind(op, ErrForbidden, err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards a route group with the configured admin secret.
func RequireAdmin(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "api.admin"
			token := auth.ExtractBearer(r.Header.Get("Authorization"))
			if token == "" {
				metrics.RecordAuthFailure()
				writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
				return
			}
			if err := m.VerifyAdmin(token); err != nil {
				writeError(w, http.StatusForbidden, "forbidden", WrapKind(op, ErrForbidden, err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
