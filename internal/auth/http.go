// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts JWT from Authorization header and adds principal to context

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/docket/internal/errs"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", MsgMissingCredential
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", MsgInvalidCredential
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", MsgMissingCredential
	}
	return token, ""
}

// HTTPAuthMiddleware creates an HTTP middleware that extracts and validates JWT tokens.
// It attaches the Principal using the same WithPrincipal/FromContext pattern as
// the gRPC interceptor.
func HTTPAuthMiddleware(gate *Gate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				logHTTPAuthFailure(logger, r, errMsg)
				writeAuthError(w, http.StatusUnauthorized, errMsg)
				return
			}

			p, err := gate.Authenticate(r.Context(), token)
			if err != nil {
				logHTTPAuthFailure(logger, r, err.Error())
				if errs.KindOf(err) == errs.KindUnauthenticated {
					writeAuthError(w, http.StatusUnauthorized, errs.PublicMessage(err))
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func logHTTPAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("auth failure", "reason", reason, "peer_addr", r.RemoteAddr, "path", r.URL.Path)
}

func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
