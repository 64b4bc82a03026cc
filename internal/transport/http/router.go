// Package httptransport assembles the HTTP surface: the public check-in
// endpoint, the authenticated owner API, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	formhandler "gatepass/internal/form/handler"
	intakehandler "gatepass/internal/intake/handler"
	"gatepass/internal/platform/metrics"
	platformmw "gatepass/internal/platform/middleware"
	premisehandler "gatepass/internal/premise/handler"
	"gatepass/internal/ratelimit"
	visithandler "gatepass/internal/visit/handler"
	"gatepass/pkg/platform/httputil"
	authmw "gatepass/pkg/platform/middleware/auth"
	metadatamw "gatepass/pkg/platform/middleware/metadata"
	requestmw "gatepass/pkg/platform/middleware/request"
	requesttimemw "gatepass/pkg/platform/middleware/requesttime"
)

// Dependencies carries everything the router mounts.
type Dependencies struct {
	Logger      *slog.Logger
	HTTPMetrics *metrics.Metrics

	SessionValidator  authmw.SessionValidator
	RevocationChecker authmw.TokenRevocationChecker

	// CheckinLimiter throttles the public check-in route; nil skips it.
	CheckinLimiter *ratelimit.Limiter

	Premises *premisehandler.Handler
	Forms    *formhandler.Handler
	Visits   *visithandler.Handler
	Intake   *intakehandler.Handler

	// Health reports readiness of backing stores; nil checks are skipped.
	Health func() error
}

// NewRouter wires middleware and routes. Public routes carry request
// metadata only; everything under /api additionally requires a valid owner
// session.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(platformmw.Recovery(deps.Logger))
	r.Use(requestmw.RequestID)
	r.Use(requesttimemw.Middleware)
	r.Use(metadatamw.ClientMetadata)
	r.Use(platformmw.Logger(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(platformmw.Latency(deps.HTTPMetrics))
	}

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// visitor-facing: gated by QR and form state, not by sessions
	r.Group(func(r chi.Router) {
		r.Use(platformmw.ContentTypeJSON)
		if deps.CheckinLimiter != nil {
			r.Use(deps.CheckinLimiter.PerIP)
		}
		deps.Intake.Register(r)
	})

	// owner-facing API
	r.Route("/api", func(r chi.Router) {
		r.Use(platformmw.ContentTypeJSON)
		r.Use(authmw.RequireAuth(deps.SessionValidator, deps.RevocationChecker, deps.Logger))
		deps.Premises.Register(r)
		deps.Forms.Register(r)
		deps.Visits.Register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
