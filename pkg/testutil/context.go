package testutil

import (
	"net/http"
	"time"

	id "gatepass/pkg/domain"
	"gatepass/pkg/requestcontext"
)

// WithPrincipal adds an authenticated principal to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the userID is not a valid UUID, it will not be added to the context.
func WithPrincipal(req *http.Request, userID string) *http.Request {
	if principal, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithPrincipal(req.Context(), principal))
	}
	return req
}

// WithClientMetadata adds the caller's IP and user agent to the request
// context, as the metadata middleware would.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}

// WithRequestTime pins the request timestamp, so tests can assert exact
// times instead of sampling the clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
