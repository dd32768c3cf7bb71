package server

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware adds request logging
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", rw.statusCode),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		})
	}
}

// AuthMiddleware requires a valid bearer token and stores the caller
// identity in the request context
func AuthMiddleware(verifier port.IdentityVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeFailure(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			identity, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("rejected bearer token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err))
				writeFailure(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), identity)))
		})
	}
}

// AdminMiddleware requires the authenticated caller to hold the admin role.
// It must run inside AuthMiddleware.
func AdminMiddleware(roles port.RoleResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := domain.IdentityFromContext(r.Context())
			if !ok {
				writeFailure(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			role, err := roles.Role(r.Context(), identity.UserID)
			if err != nil {
				logger.Error("failed to resolve role",
					zap.String("user", identity.UserID), zap.Error(err))
				writeFailure(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			identity.Role = role
			if !identity.IsAdmin() {
				logger.Warn("non-admin caller on admin route",
					zap.String("user", identity.UserID),
					zap.String("path", r.URL.Path))
				writeFailure(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), identity)))
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// callerID returns the authenticated user id of r
func callerID(r *http.Request) string {
	identity, _ := domain.IdentityFromContext(r.Context())
	return identity.UserID
}
