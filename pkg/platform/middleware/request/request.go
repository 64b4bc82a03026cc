// Package request assigns and exposes the per-request correlation id.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"gatepass/pkg/requestcontext"
)

// HeaderRequestID is the inbound/outbound correlation header.
const HeaderRequestID = "X-Request-Id"

// RequestID propagates an existing correlation id or assigns a fresh one,
// storing it in the context and echoing it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		w.Header().Set(HeaderRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation id from a request context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
