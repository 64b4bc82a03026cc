package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Limiter throttles requests per client IP.
type Limiter struct {
	store    Store
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *Metrics
	disabled bool
}

type Option func(*Limiter)

// WithDisabled turns the limiter off entirely, for tests and demo setups.
func WithDisabled(disabled bool) Option {
	return func(l *Limiter) { l.disabled = disabled }
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

func New(store Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.disabled {
		logger.Info("check-in rate limiting disabled")
	}
	return l
}

// PerIP limits requests by client IP. A limiter store fault fails open:
// throttling is abuse protection, not an availability dependency.
func (l *Limiter) PerIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.disabled || l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result, err := l.store.Allow(ctx, ip, l.limit, l.window)
		if err != nil {
			l.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "client_ip", ip)
			if l.metrics != nil {
				l.metrics.CheckFault.Inc()
			}
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if l.metrics != nil {
				l.metrics.Throttled.Inc()
			}
			retryAfter := result.RetryAfter(time.Now())
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Too many check-in attempts from this address. Please try again later.",
				"retry_after": retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
