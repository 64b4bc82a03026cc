package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	formmodels "gatepass/internal/form/models"
	"gatepass/internal/intake/device"
	"gatepass/internal/intake/metrics"
	visitmodels "gatepass/internal/visit/models"
	visitormodels "gatepass/internal/visitor/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/formdata"
	audit "gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// QRStore resolves printed QR identifiers to their form binding.
type QRStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*formmodels.QRCode, error)
}

// FormStore loads the bound form for active-state and consistency checks.
type FormStore interface {
	FindByID(ctx context.Context, formID id.FormID) (*formmodels.Form, error)
}

// VisitStore persists the created visit and the secondary identity link.
type VisitStore interface {
	Create(ctx context.Context, v *visitmodels.Visit) error
	LinkVisitor(ctx context.Context, visitID id.VisitID, visitorID id.VisitorID, at time.Time) error
}

// IdentityResolver deduplicates recurring visitors. A nil visitor with nil
// error means the submission stays anonymous.
type IdentityResolver interface {
	ResolveOrCreate(ctx context.Context, data formdata.FormData) (*visitormodels.Visitor, error)
}

// AuditPublisher records accepted submissions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service handles visitor-initiated check-in submissions. Intake is public:
// it is gated by the QR and form active-state checks, never by the ownership
// guard.
type Service struct {
	qrcodes  QRStore
	forms    FormStore
	visits   VisitStore
	resolver IdentityResolver
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

func New(qrcodes QRStore, forms FormStore, visits VisitStore, resolver IdentityResolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		qrcodes:  qrcodes,
		forms:    forms,
		visits:   visits,
		resolver: resolver,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit accepts a check-in against the QR identifier's bound form. The
// preconditions run in order and each failure is distinct: unknown QR or
// form are not-found, inactive QR and inactive form are separate 400s, and
// a premise mismatch between the two is a configuration fault that never
// reads as user error.
//
// Exactly one visit row is durably created on success regardless of the
// identity-linkage outcome; resolver failures are logged and swallowed.
func (s *Service) Submit(ctx context.Context, qrIdentifier string, raw map[string]string) (*visitmodels.Visit, error) {
	start := time.Now()

	if qrIdentifier == "" {
		s.incrementRejected("missing_identifier")
		return nil, dErrors.New(dErrors.CodeNotFound, "qr code not found")
	}
	if len(raw) == 0 {
		s.incrementRejected("empty_submission")
		return nil, dErrors.New(dErrors.CodeValidation, "form data is required")
	}

	qr, err := s.qrcodes.FindByIdentifier(ctx, qrIdentifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementRejected("unknown_qr")
			return nil, dErrors.New(dErrors.CodeNotFound, "qr code not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve qr code")
	}
	if !qr.IsActive {
		s.incrementRejected("inactive_qr")
		return nil, dErrors.New(dErrors.CodeBadRequest, "qr code is no longer active")
	}

	form, err := s.forms.FindByID(ctx, qr.FormID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementRejected("unknown_form")
			return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load form")
	}
	if !form.IsActive {
		s.incrementRejected("inactive_form")
		return nil, dErrors.New(dErrors.CodeBadRequest, "form is no longer accepting submissions")
	}

	if form.PremiseID != qr.PremiseID {
		s.incrementRejected("premise_mismatch")
		s.logger.ErrorContext(ctx, "qr code and form premise mismatch",
			"qrcode_id", qr.ID,
			"form_id", form.ID,
			"qr_premise_id", qr.PremiseID,
			"form_premise_id", form.PremiseID,
		)
		return nil, dErrors.New(dErrors.CodeConfigFault, "qr code is misconfigured")
	}

	data := formdata.Normalize(raw)
	now := requestcontext.Now(ctx)

	visit, err := visitmodels.NewVisit(id.NewVisitID(), form.PremiseID, form.ID, qr.ID, form.Version, data, now)
	if err != nil {
		return nil, err
	}
	visit.DeviceSummary = device.ParseUserAgent(requestcontext.UserAgent(ctx))
	visit.ClientIP = requestcontext.ClientIP(ctx)

	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create visit")
	}

	s.emit(ctx, audit.Event{
		Action:    string(audit.EventVisitSubmitted),
		PremiseID: visit.PremiseID,
		VisitID:   visit.ID,
	})

	s.linkIdentity(ctx, visit, data, now)
	s.incrementAccepted()
	s.observeSubmit(start)
	s.logger.InfoContext(ctx, "check-in accepted",
		"visit_id", visit.ID,
		"premise_id", visit.PremiseID,
		"form_id", visit.FormID,
		"anonymous", visit.VisitorID == nil,
	)
	return visit, nil
}

// linkIdentity runs the resolver and attaches the result to the visit. The
// visit is already durable; nothing here may fail the submission.
func (s *Service) linkIdentity(ctx context.Context, visit *visitmodels.Visit, data formdata.FormData, now time.Time) {
	visitor, err := s.resolver.ResolveOrCreate(ctx, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "identity resolution failed",
			"visit_id", visit.ID,
			"error", err,
		)
		s.incrementAnonymous()
		return
	}
	if visitor == nil {
		s.incrementAnonymous()
		return
	}

	if err := s.visits.LinkVisitor(ctx, visit.ID, visitor.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "visitor linkage failed",
			"visit_id", visit.ID,
			"visitor_id", visitor.ID,
			"error", err,
		)
		return
	}
	visit.LinkVisitor(visitor.ID, now)
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventVisitorLinked),
		PremiseID: visit.PremiseID,
		VisitID:   visit.ID,
		VisitorID: visitor.ID,
	})
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

func (s *Service) incrementAccepted() {
	if s.metrics != nil {
		s.metrics.IncrementAccepted()
	}
}

func (s *Service) incrementRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
}

func (s *Service) incrementAnonymous() {
	if s.metrics != nil {
		s.metrics.IncrementAnonymous()
	}
}

func (s *Service) observeSubmit(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSubmit(start)
	}
}
