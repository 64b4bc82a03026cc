package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	visitmodels "gatepass/internal/visit/models"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Service defines the interface for check-in submissions.
type Service interface {
	Submit(ctx context.Context, qrIdentifier string, raw map[string]string) (*visitmodels.Visit, error)
}

// Handler wires the public check-in endpoint to the intake service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an intake handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public check-in endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/checkin/{qrIdentifier}", h.HandleSubmit)
}

// SubmitRequest is the HTTP request body for POST /checkin/{qrIdentifier}.
// Keys are the form's field labels verbatim; normalization happens inside
// the service.
type SubmitRequest struct {
	FormData map[string]string `json:"form_data"`
}

// SubmitResponse is the HTTP response for an accepted check-in.
type SubmitResponse struct {
	VisitID string `json:"visit_id"`
	Status  string `json:"status"`
}

// HandleSubmit handles POST /checkin/{qrIdentifier} requests. Public: no
// principal is required; the service gates on QR and form state instead.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	qrIdentifier := chi.URLParam(r, "qrIdentifier")

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "check-in decode failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	visit, err := h.service.Submit(ctx, qrIdentifier, req.FormData)
	if err != nil {
		h.logger.WarnContext(ctx, "check-in rejected",
			"request_id", requestID,
			"qr_identifier", qrIdentifier,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		VisitID: visit.ID.String(),
		Status:  string(visit.Status),
	})
}
