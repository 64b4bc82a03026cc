package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/form/metrics"
	"gatepass/internal/form/models"
	"gatepass/internal/form/service"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Service defines the interface for form operations.
type Service interface {
	Create(ctx context.Context, principal id.UserID, input service.CreateInput) (*models.Form, error)
	Update(ctx context.Context, principal id.UserID, formID id.FormID, input service.UpdateInput) (*models.Form, error)
	SetActive(ctx context.Context, principal id.UserID, formID id.FormID, active bool) (*models.Form, error)
	Delete(ctx context.Context, principal id.UserID, formID id.FormID) error
	List(ctx context.Context, principal id.UserID) ([]*models.Form, error)
	Get(ctx context.Context, principal id.UserID, formID id.FormID) (*models.Form, error)
	GetQRCode(ctx context.Context, principal id.UserID, formID id.FormID) (*models.QRCode, error)
	RegenerateQRCode(ctx context.Context, principal id.UserID, formID id.FormID) (*models.QRCode, error)
}

// Handler wires form endpoints to the form service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a form handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts form endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/forms", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Route("/{formID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Patch("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Get("/qrcode", h.HandleGetQRCode)
			r.Post("/qrcode/regenerate", h.HandleRegenerateQRCode)
		})
	})
}

// HandleCreate handles POST /forms requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateFormRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	form, err := h.service.Create(ctx, principal, service.CreateInput{
		Name:   req.Name,
		Fields: req.ParsedFields(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "form creation failed",
			"request_id", requestID,
			"user_id", principal,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementFormsCreated()
	h.logger.InfoContext(ctx, "form created",
		"request_id", requestID,
		"form_id", form.ID,
		"premise_id", form.PremiseID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromForm(form))
}

// HandleList handles GET /forms requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	forms, err := h.service.List(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromForms(forms))
}

// HandleGet handles GET /forms/{formID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "form not found"))
		return
	}

	form, err := h.service.Get(ctx, principal, formID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromForm(form))
}

// HandleUpdate handles PATCH /forms/{formID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "form not found"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateFormRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var form *models.Form
	if req.Name != nil || req.Fields != nil {
		form, err = h.service.Update(ctx, principal, formID, service.UpdateInput{
			Name:   req.Name,
			Fields: req.ParsedFields(),
		})
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if req.IsActive != nil {
		form, err = h.service.SetActive(ctx, principal, formID, *req.IsActive)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	h.logger.InfoContext(ctx, "form updated",
		"request_id", requestID,
		"form_id", formID,
		"version", form.Version,
	)
	httputil.WriteJSON(w, http.StatusOK, FromForm(form))
}

// HandleDelete handles DELETE /forms/{formID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "form not found"))
		return
	}

	if err := h.service.Delete(ctx, principal, formID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetQRCode handles GET /forms/{formID}/qrcode requests. The binding is
// created on first request, so a freshly created form always has a printable
// code.
func (h *Handler) HandleGetQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)
	start := time.Now()

	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "form not found"))
		return
	}

	qr, err := h.service.GetQRCode(ctx, principal, formID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.metrics.ObserveQRLookup(start)
	httputil.WriteJSON(w, http.StatusOK, FromQRCode(qr))
}

// HandleRegenerateQRCode handles POST /forms/{formID}/qrcode/regenerate.
func (h *Handler) HandleRegenerateQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	principal := requestcontext.Principal(ctx)

	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "form not found"))
		return
	}

	qr, err := h.service.RegenerateQRCode(ctx, principal, formID)
	if err != nil {
		h.logger.ErrorContext(ctx, "qr regeneration failed",
			"request_id", requestID,
			"form_id", formID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementQRCodesRegenerated()
	h.logger.InfoContext(ctx, "qr code regenerated",
		"request_id", requestID,
		"form_id", formID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromQRCode(qr))
}
