package service

import (
	"context"
	"errors"
	"log/slog"

	"gatepass/internal/premise/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	audit "gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
	"gatepass/pkg/token"
)

// Store abstracts premise persistence.
type Store interface {
	CreateIfOwnerAvailable(ctx context.Context, p *models.Premise) error
	FindByID(ctx context.Context, premiseID id.PremiseID) (*models.Premise, error)
	FindByOwner(ctx context.Context, ownerID id.UserID) (*models.Premise, error)
	Update(ctx context.Context, p *models.Premise) error
}

// AuditPublisher records premise lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates premise lifecycle: creation during profile completion
// and owner-gated updates.
type Service struct {
	premises Store
	logger   *slog.Logger
	auditPub AuditPublisher
}

type Option func(*Service)

func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.auditPub = pub }
}

func New(premises Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{premises: premises, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the profile-completion fields.
type CreateInput struct {
	Name         string
	BusinessType string
}

// Create provisions the principal's premise. At most one premise may exist
// per owner; a second attempt yields Conflict.
func (s *Service) Create(ctx context.Context, principal id.UserID, input CreateInput) (*models.Premise, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	code, err := token.NewFriendlyCode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate friendly code")
	}

	p, err := models.NewPremise(id.NewPremiseID(), principal, input.Name, input.BusinessType, code, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.premises.CreateIfOwnerAvailable(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a premise already exists for this account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create premise")
	}

	s.emit(ctx, audit.Event{
		Action:    string(audit.EventPremiseCreated),
		PremiseID: p.ID,
		ActorID:   principal,
	})
	return p, nil
}

// GetOwn returns the principal's premise.
func (s *Service) GetOwn(ctx context.Context, principal id.UserID) (*models.Premise, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	p, err := s.premises.FindByOwner(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "premise not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load premise")
	}
	return p, nil
}

// UpdateInput carries the mutable premise fields.
type UpdateInput struct {
	Name         *string
	BusinessType *string
}

// Update modifies the principal's premise. Only the owner may mutate it; the
// ownership check and the lookup collapse here because the premise is looked
// up by owner.
func (s *Service) Update(ctx context.Context, principal id.UserID, input UpdateInput) (*models.Premise, error) {
	p, err := s.GetOwn(ctx, principal)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.BusinessType != nil {
		p.BusinessType = *input.BusinessType
	}
	if p.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "premise name cannot be empty")
	}
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.premises.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "premise not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update premise")
	}
	return p, nil
}

// FindOwner resolves a premise's owner for the authorization guard. A missing
// premise here means a referencing resource points at a dead premise, which
// is a configuration fault, not a user-facing not-found.
func (s *Service) FindOwner(ctx context.Context, premiseID id.PremiseID) (id.UserID, error) {
	p, err := s.premises.FindByID(ctx, premiseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.UserID{}, dErrors.New(dErrors.CodeConfigFault, "premise missing for scoped resource")
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve premise owner")
	}
	return p.OwnerID, nil
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
