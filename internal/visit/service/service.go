package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gatepass/internal/authz"
	premisemodels "gatepass/internal/premise/models"
	"gatepass/internal/visit/metrics"
	"gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	audit "gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Store abstracts visit persistence. Execute holds the store's lock (mutex
// or FOR UPDATE) across both callbacks so the status precondition and the
// write form one atomic unit.
type Store interface {
	Create(ctx context.Context, v *models.Visit) error
	FindByID(ctx context.Context, visitID id.VisitID) (*models.Visit, error)
	ListByPremise(ctx context.Context, premiseID id.PremiseID, status *models.VisitStatus) ([]*models.Visit, error)
	Execute(ctx context.Context, visitID id.VisitID, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error)
	LinkVisitor(ctx context.Context, visitID id.VisitID, visitorID id.VisitorID, at time.Time) error
}

// PremiseDirectory resolves the acting principal's premise for list queries.
type PremiseDirectory interface {
	FindByOwner(ctx context.Context, ownerID id.UserID) (*premisemodels.Premise, error)
}

// AuditPublisher records visit lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service drives the visit lifecycle. Owner-initiated transitions resolve
// the visit, pass the guard, then re-check the status inside Execute so a
// concurrent decision on the same visit loses with InvalidState instead of
// overwriting.
type Service struct {
	visits   Store
	premises PremiseDirectory
	guard    *authz.Guard
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditPub AuditPublisher
}

type Option func(*Service)

func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.auditPub = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(visits Store, premises PremiseDirectory, guard *authz.Guard, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{visits: visits, premises: premises, guard: guard, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve transitions an awaiting visit to approved.
func (s *Service) Approve(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error) {
	now := requestcontext.Now(ctx)
	visit, err := s.transition(ctx, principal, visitID, "approve",
		func(v *models.Visit) error { return v.CanApprove() },
		func(v *models.Visit) { v.ApplyApproval(principal, now) },
	)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventVisitApproved),
		PremiseID: visit.PremiseID,
		VisitID:   visit.ID,
		ActorID:   principal,
	})
	return visit, nil
}

// Deny transitions an awaiting visit to denied. The reason is required;
// empty or whitespace-only reasons fail before the visit is even loaded.
func (s *Service) Deny(ctx context.Context, principal id.UserID, visitID id.VisitID, reason string) (*models.Visit, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "denial reason is required")
	}

	now := requestcontext.Now(ctx)
	visit, err := s.transition(ctx, principal, visitID, "deny",
		func(v *models.Visit) error { return v.CanDeny() },
		func(v *models.Visit) { v.ApplyDenial(principal, reason, now) },
	)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventVisitDenied),
		PremiseID: visit.PremiseID,
		VisitID:   visit.ID,
		ActorID:   principal,
		Reason:    reason,
	})
	return visit, nil
}

// Checkout transitions an approved visit to checked_out and records the
// departure time.
func (s *Service) Checkout(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error) {
	now := requestcontext.Now(ctx)
	visit, err := s.transition(ctx, principal, visitID, "checkout",
		func(v *models.Visit) error { return v.CanCheckout() },
		func(v *models.Visit) { v.ApplyCheckout(now) },
	)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventVisitCheckedOut),
		PremiseID: visit.PremiseID,
		VisitID:   visit.ID,
		ActorID:   principal,
	})
	return visit, nil
}

// List returns the visits of the given premise, newest first, optionally
// filtered by status.
func (s *Service) List(ctx context.Context, principal id.UserID, premiseID id.PremiseID, status *models.VisitStatus) ([]*models.Visit, error) {
	if err := s.guard.RequireOwner(ctx, principal, premiseID); err != nil {
		return nil, err
	}
	visits, err := s.visits.ListByPremise(ctx, premiseID, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visits")
	}
	return visits, nil
}

// ListOwn resolves the principal's premise and returns its visits.
func (s *Service) ListOwn(ctx context.Context, principal id.UserID, status *models.VisitStatus) ([]*models.Visit, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	premise, err := s.premises.FindByOwner(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "premise not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load premise")
	}
	return s.List(ctx, principal, premise.ID, status)
}

// Get returns one visit, owner-gated.
func (s *Service) Get(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error) {
	return s.ownedVisit(ctx, principal, visitID)
}

func (s *Service) transition(ctx context.Context, principal id.UserID, visitID id.VisitID, action string, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	start := time.Now()

	// ownership is checked on a plain read first; premise_id never changes,
	// so the guard verdict cannot go stale before the lock is taken
	if _, err := s.ownedVisit(ctx, principal, visitID); err != nil {
		return nil, err
	}

	visit, err := s.visits.Execute(ctx, visitID, validate, mutate)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "visit not found")
		}
		if dErrors.HasCode(err, dErrors.CodeInvalidState) {
			s.incrementRejected(action)
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to transition visit")
	}

	s.incrementTransition(action)
	s.observeTransition(start)
	s.logger.InfoContext(ctx, "visit transition applied",
		"visit_id", visitID,
		"action", action,
		"status", visit.Status,
	)
	return visit, nil
}

func (s *Service) ownedVisit(ctx context.Context, principal id.UserID, visitID id.VisitID) (*models.Visit, error) {
	v, err := s.visits.FindByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "visit not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visit")
	}
	if err := s.guard.RequireResourceOwner(ctx, principal, v); err != nil {
		return nil, err
	}
	return v, nil
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

func (s *Service) incrementTransition(action string) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(action)
	}
}

func (s *Service) incrementRejected(action string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(action)
	}
}

func (s *Service) observeTransition(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(start)
	}
}
