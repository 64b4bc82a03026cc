package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Service defines the interface for owner-initiated visit operations.
type Service interface {
	Approve(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error)
	Deny(ctx context.Context, principal id.UserID, visitID id.VisitID, reason string) (*models.Visit, error)
	Checkout(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error)
	ListOwn(ctx context.Context, principal id.UserID, status *models.VisitStatus) ([]*models.Visit, error)
	Get(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error)
}

// Handler wires visit endpoints to the visit service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a visit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts visit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/visits", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Route("/{visitID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Post("/approve", h.HandleApprove)
			r.Post("/deny", h.HandleDeny)
			r.Post("/checkout", h.HandleCheckout)
		})
	})
}

// HandleList handles GET /visits requests. An optional ?status= query
// filters by lifecycle state.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	var status *models.VisitStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseVisitStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = &parsed
	}

	visits, err := h.service.ListOwn(ctx, principal, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVisits(visits))
}

// HandleGet handles GET /visits/{visitID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	visitID, ok := h.visitID(w, r)
	if !ok {
		return
	}

	visit, err := h.service.Get(ctx, principal, visitID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVisit(visit))
}

// HandleApprove handles POST /visits/{visitID}/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	visitID, ok := h.visitID(w, r)
	if !ok {
		return
	}

	visit, err := h.service.Approve(ctx, principal, visitID)
	if err != nil {
		h.logger.WarnContext(ctx, "visit approval rejected",
			"request_id", requestID,
			"visit_id", visitID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVisit(visit))
}

// HandleDeny handles POST /visits/{visitID}/deny requests.
func (h *Handler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	visitID, ok := h.visitID(w, r)
	if !ok {
		return
	}

	req, decoded := httputil.DecodeAndPrepare[DenyRequest](w, r, h.logger, ctx, requestID)
	if !decoded {
		return
	}

	visit, err := h.service.Deny(ctx, principal, visitID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "visit denial rejected",
			"request_id", requestID,
			"visit_id", visitID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVisit(visit))
}

// HandleCheckout handles POST /visits/{visitID}/checkout requests.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	visitID, ok := h.visitID(w, r)
	if !ok {
		return
	}

	visit, err := h.service.Checkout(ctx, principal, visitID)
	if err != nil {
		h.logger.WarnContext(ctx, "visit checkout rejected",
			"request_id", requestID,
			"visit_id", visitID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVisit(visit))
}

func (h *Handler) visitID(w http.ResponseWriter, r *http.Request) (id.VisitID, bool) {
	visitID, err := id.ParseVisitID(chi.URLParam(r, "visitID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "visit not found"))
		return id.VisitID{}, false
	}
	return visitID, true
}
