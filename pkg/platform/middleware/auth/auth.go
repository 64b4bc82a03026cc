// Package auth gates owner-facing routes on the external session provider.
//
// The core trusts the validated subject without re-verifying credentials;
// session issuance lives outside this system. A revocation checker lets
// logged-out sessions be rejected before their tokens expire.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "gatepass/pkg/domain"
	request "gatepass/pkg/platform/middleware/request"
	"gatepass/pkg/requestcontext"
)

// SessionValidator validates a bearer token issued by the session provider.
type SessionValidator interface {
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// TokenRevocationChecker reports whether a session token has been revoked.
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionClaims carries the subset of token claims the core consumes.
type SessionClaims struct {
	PrincipalID id.UserID
	JTI         string
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}

// RequireAuth validates the Authorization bearer token, checks revocation,
// and stores the principal id in the request context. Missing or invalid
// tokens end the request with 401.
func RequireAuth(validator SessionValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if revocationChecker != nil && claims.JTI != "" {
				revoked, err := revocationChecker.IsRevoked(ctx, claims.JTI)
				if err != nil {
					// fail closed: an unreachable revocation list must not
					// let revoked sessions through
					logger.ErrorContext(ctx, "revocation check failed",
						"error", err,
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Session could not be verified")
					return
				}
				if revoked {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Session has been revoked")
					return
				}
			}

			ctx = requestcontext.WithPrincipal(ctx, claims.PrincipalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
