package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gatepass/internal/authz"
	"gatepass/internal/form/models"
	premisemodels "gatepass/internal/premise/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	audit "gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
	"gatepass/pkg/token"
)

// FormStore abstracts form persistence.
type FormStore interface {
	Create(ctx context.Context, f *models.Form) error
	FindByID(ctx context.Context, formID id.FormID) (*models.Form, error)
	ListByPremise(ctx context.Context, premiseID id.PremiseID) ([]*models.Form, error)
	Update(ctx context.Context, f *models.Form) error
	Delete(ctx context.Context, formID id.FormID) error
}

// QRStore abstracts QR binding persistence.
type QRStore interface {
	Create(ctx context.Context, qr *models.QRCode) error
	FindByIdentifier(ctx context.Context, identifier string) (*models.QRCode, error)
	FindActiveByForm(ctx context.Context, formID id.FormID) (*models.QRCode, error)
	DeactivateByForm(ctx context.Context, formID id.FormID, at time.Time) error
	CountByForm(ctx context.Context, formID id.FormID) (int, error)
}

// PremiseDirectory resolves the acting principal's premise.
type PremiseDirectory interface {
	FindByOwner(ctx context.Context, ownerID id.UserID) (*premisemodels.Premise, error)
}

// AuditPublisher records form lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates form and QR binding lifecycle. Every operation that
// names an existing form resolves it first (absent forms are NotFound), then
// passes the ownership question to the guard.
type Service struct {
	forms    FormStore
	qrcodes  QRStore
	premises PremiseDirectory
	guard    *authz.Guard
	logger   *slog.Logger
	auditPub AuditPublisher
}

type Option func(*Service)

func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.auditPub = pub }
}

func New(forms FormStore, qrcodes QRStore, premises PremiseDirectory, guard *authz.Guard, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		forms:    forms,
		qrcodes:  qrcodes,
		premises: premises,
		guard:    guard,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the fields for a new form.
type CreateInput struct {
	Name   string
	Fields []models.FieldDefinition
}

// Create registers a form under the principal's premise.
func (s *Service) Create(ctx context.Context, principal id.UserID, input CreateInput) (*models.Form, error) {
	premise, err := s.premiseFor(ctx, principal)
	if err != nil {
		return nil, err
	}

	f, err := models.NewForm(id.NewFormID(), premise.ID, input.Name, input.Fields, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.forms.Create(ctx, f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create form")
	}

	s.emit(ctx, audit.Event{
		Action:    string(audit.EventFormCreated),
		PremiseID: f.PremiseID,
		ActorID:   principal,
	})
	return f, nil
}

// UpdateInput carries mutable form fields; nil members are left unchanged.
type UpdateInput struct {
	Name   *string
	Fields []models.FieldDefinition
}

// Update modifies a form's name or definition and bumps its version.
func (s *Service) Update(ctx context.Context, principal id.UserID, formID id.FormID, input UpdateInput) (*models.Form, error) {
	f, err := s.ownedForm(ctx, principal, formID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		f.Name = *input.Name
	}
	if input.Fields != nil {
		if err := models.ValidateFields(input.Fields); err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		f.Fields = input.Fields
	}
	if f.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "form name cannot be empty")
	}
	f.Version++
	f.UpdatedAt = requestcontext.Now(ctx)

	if err := s.forms.Update(ctx, f); err != nil {
		return nil, s.wrapStoreErr(err, "failed to update form")
	}

	s.emit(ctx, audit.Event{
		Action:    string(audit.EventFormUpdated),
		PremiseID: f.PremiseID,
		ActorID:   principal,
	})
	return f, nil
}

// SetActive toggles a form's active flag. Inactive forms reject submissions
// distinctly from inactive QR codes.
func (s *Service) SetActive(ctx context.Context, principal id.UserID, formID id.FormID, active bool) (*models.Form, error) {
	f, err := s.ownedForm(ctx, principal, formID)
	if err != nil {
		return nil, err
	}
	if f.IsActive == active {
		return f, nil
	}
	f.IsActive = active
	f.UpdatedAt = requestcontext.Now(ctx)
	if err := s.forms.Update(ctx, f); err != nil {
		return nil, s.wrapStoreErr(err, "failed to update form")
	}
	return f, nil
}

// Delete removes a form. Rejected with Conflict while any QR code still
// references it (the referential invariant); owners must regenerate bindings
// away or accept the inactive form instead.
func (s *Service) Delete(ctx context.Context, principal id.UserID, formID id.FormID) error {
	f, err := s.ownedForm(ctx, principal, formID)
	if err != nil {
		return err
	}
	refs, err := s.qrcodes.CountByForm(ctx, f.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count qr references")
	}
	if refs > 0 {
		return dErrors.New(dErrors.CodeConflict, "form has QR codes referencing it")
	}
	if err := s.forms.Delete(ctx, f.ID); err != nil {
		return s.wrapStoreErr(err, "failed to delete form")
	}
	return nil
}

// List returns every form owned by the principal's premise.
func (s *Service) List(ctx context.Context, principal id.UserID) ([]*models.Form, error) {
	premise, err := s.premiseFor(ctx, principal)
	if err != nil {
		return nil, err
	}
	forms, err := s.forms.ListByPremise(ctx, premise.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list forms")
	}
	return forms, nil
}

// Get returns one form, owner-gated.
func (s *Service) Get(ctx context.Context, principal id.UserID, formID id.FormID) (*models.Form, error) {
	return s.ownedForm(ctx, principal, formID)
}

// EnsureQRCode returns the form's active QR binding, lazily creating one when
// absent ("ensure" semantics). Invoked both from the owner dashboard and the
// intake bootstrap.
func (s *Service) EnsureQRCode(ctx context.Context, formID id.FormID) (*models.QRCode, error) {
	f, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load form")
	}

	qr, err := s.qrcodes.FindActiveByForm(ctx, f.ID)
	if err == nil {
		return qr, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load qr binding")
	}
	return s.issueQRCode(ctx, f)
}

// GetQRCode is the owner-facing ensure: resolves the form, checks ownership,
// then delegates to EnsureQRCode.
func (s *Service) GetQRCode(ctx context.Context, principal id.UserID, formID id.FormID) (*models.QRCode, error) {
	f, err := s.ownedForm(ctx, principal, formID)
	if err != nil {
		return nil, err
	}
	return s.EnsureQRCode(ctx, f.ID)
}

// RegenerateQRCode deactivates the form's current identifier and issues a
// fresh one. Owner-gated; old printed codes become "expired".
func (s *Service) RegenerateQRCode(ctx context.Context, principal id.UserID, formID id.FormID) (*models.QRCode, error) {
	f, err := s.ownedForm(ctx, principal, formID)
	if err != nil {
		return nil, err
	}
	if err := s.qrcodes.DeactivateByForm(ctx, f.ID, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate qr bindings")
	}
	qr, err := s.issueQRCode(ctx, f)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventQRRegenerated),
		PremiseID: f.PremiseID,
		ActorID:   principal,
	})
	return qr, nil
}

func (s *Service) issueQRCode(ctx context.Context, f *models.Form) (*models.QRCode, error) {
	// identifier collisions are vanishingly rare but the unique index makes
	// them loud; retry once before giving up
	for attempt := 0; attempt < 2; attempt++ {
		identifier, err := token.NewQRIdentifier()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate qr identifier")
		}
		qr := &models.QRCode{
			ID:         id.NewQRCodeID(),
			FormID:     f.ID,
			PremiseID:  f.PremiseID,
			Identifier: identifier,
			IsActive:   true,
			CreatedAt:  requestcontext.Now(ctx),
		}
		err = s.qrcodes.Create(ctx, qr)
		if err == nil {
			return qr, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create qr binding")
		}
	}
	return nil, dErrors.New(dErrors.CodeInternal, "failed to allocate unique qr identifier")
}

// ownedForm resolves the form and enforces premise ownership: absent form →
// NotFound, foreign form → Forbidden.
func (s *Service) ownedForm(ctx context.Context, principal id.UserID, formID id.FormID) (*models.Form, error) {
	f, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load form")
	}
	if err := s.guard.RequireResourceOwner(ctx, principal, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) premiseFor(ctx context.Context, principal id.UserID) (*premisemodels.Premise, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	premise, err := s.premises.FindByOwner(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "premise not found; complete your profile first")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load premise")
	}
	return premise, nil
}

func (s *Service) wrapStoreErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "form not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	if err := s.auditPub.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action, "error", err)
	}
}
