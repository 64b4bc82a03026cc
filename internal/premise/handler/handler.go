package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/premise/models"
	"gatepass/internal/premise/service"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Service defines the interface for premise operations.
type Service interface {
	Create(ctx context.Context, principal id.UserID, input service.CreateInput) (*models.Premise, error)
	GetOwn(ctx context.Context, principal id.UserID) (*models.Premise, error)
	Update(ctx context.Context, principal id.UserID, input service.UpdateInput) (*models.Premise, error)
}

// Handler wires premise endpoints to the premise service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a premise handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts premise endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/premises", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/me", h.HandleGetOwn)
		r.Patch("/me", h.HandleUpdate)
	})
}

// PremiseResponse is the HTTP representation of a premise.
type PremiseResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessType string    `json:"business_type"`
	FriendlyCode string    `json:"friendly_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromPremise converts a domain premise to its HTTP representation.
func FromPremise(p *models.Premise) *PremiseResponse {
	return &PremiseResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		BusinessType: p.BusinessType,
		FriendlyCode: p.FriendlyCode,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// HandleCreate handles POST /premises requests (profile completion).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePremiseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	premise, err := h.service.Create(ctx, principal, service.CreateInput{
		Name:         req.Name,
		BusinessType: req.BusinessType,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "premise creation failed",
			"request_id", requestID,
			"user_id", principal,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "premise created",
		"request_id", requestID,
		"premise_id", premise.ID,
		"user_id", principal,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromPremise(premise))
}

// HandleGetOwn handles GET /premises/me requests.
func (h *Handler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	premise, err := h.service.GetOwn(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPremise(premise))
}

// HandleUpdate handles PATCH /premises/me requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdatePremiseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	premise, err := h.service.Update(ctx, principal, service.UpdateInput{
		Name:         req.Name,
		BusinessType: req.BusinessType,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "premise updated",
		"request_id", requestID,
		"premise_id", premise.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromPremise(premise))
}
