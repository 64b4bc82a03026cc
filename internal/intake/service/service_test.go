package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	formmodels "gatepass/internal/form/models"
	formstore "gatepass/internal/form/store/form"
	qrstore "gatepass/internal/form/store/qrcode"
	visitmodels "gatepass/internal/visit/models"
	visitstore "gatepass/internal/visit/store"
	visitormodels "gatepass/internal/visitor/models"
	visitorservice "gatepass/internal/visitor/service"
	visitorstore "gatepass/internal/visitor/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/formdata"
	audit "gatepass/pkg/platform/audit"
	auditmemory "gatepass/pkg/platform/audit/store/memory"
	"gatepass/pkg/requestcontext"
)

type IntakeSuite struct {
	suite.Suite
	ctx      context.Context
	premise  id.PremiseID
	form     *formmodels.Form
	qr       *formmodels.QRCode
	forms    *formstore.InMemory
	qrcodes  *qrstore.InMemory
	visits   *visitstore.InMemory
	visitors *visitorstore.InMemory
	audits   *auditmemory.Store
	svc      *Service
}

func (s *IntakeSuite) SetupTest() {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	s.ctx = ctx

	s.premise = id.NewPremiseID()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.forms = formstore.NewInMemory()
	form, err := formmodels.NewForm(id.NewFormID(), s.premise, "Visitor Sign-In",
		[]formmodels.FieldDefinition{
			{Label: "Full Name", InputKind: formmodels.InputText, Required: true},
			{Label: "Email", InputKind: formmodels.InputEmail},
		}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.forms.Create(ctx, form))
	s.form = form

	s.qrcodes = qrstore.NewInMemory()
	s.qr = &formmodels.QRCode{
		ID: id.NewQRCodeID(), FormID: form.ID, PremiseID: s.premise,
		Identifier: "qr-front-door", IsActive: true, CreatedAt: now,
	}
	s.Require().NoError(s.qrcodes.Create(ctx, s.qr))

	s.visits = visitstore.NewInMemory()
	s.visitors = visitorstore.NewInMemory()
	s.audits = auditmemory.New()

	s.svc = New(s.qrcodes, s.forms, s.visits,
		visitorservice.NewResolver(s.visitors, logger), logger,
		WithAuditPublisher(audit.NewPublisher(s.audits)))
}

func (s *IntakeSuite) TestSubmit() {
	visit, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{
		"Full Name": "Jane",
		"Email":     "jane@x.com",
	})
	s.Require().NoError(err)
	s.Equal(visitmodels.StatusPendingApproval, visit.Status)
	s.Equal(s.premise, visit.PremiseID)
	s.Equal(s.form.Version, visit.FormVersion)
	s.Equal("Jane", visit.FormData.Original["Full Name"])
	s.Equal("Jane", visit.FormData.Normalized["full_name"])
	s.Equal("203.0.113.7", visit.ClientIP)
	s.Contains(visit.DeviceSummary, "Firefox")

	s.Require().NotNil(visit.VisitorID)
	visitor, err := s.visitors.FindByEmail(s.ctx, "jane@x.com")
	s.Require().NoError(err)
	s.Equal(visitor.ID, *visit.VisitorID)
}

func (s *IntakeSuite) TestSubmitRecordsAuditTrail() {
	_, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{
		"Full Name": "Jane", "Email": "jane@x.com",
	})
	s.Require().NoError(err)

	events := s.audits.All()
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventVisitSubmitted), events[0].Action)
	s.Equal(string(audit.EventVisitorLinked), events[1].Action)
}

func (s *IntakeSuite) TestAnonymousSubmissionStillAccepted() {
	visit, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{
		"Company": "Acme",
	})
	s.Require().NoError(err)
	s.Nil(visit.VisitorID)

	stored, err := s.visits.FindByID(s.ctx, visit.ID)
	s.Require().NoError(err)
	s.Equal(visitmodels.StatusPendingApproval, stored.Status)
}

func (s *IntakeSuite) TestResolverFailureIsSwallowed() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(s.qrcodes, s.forms, s.visits, failingResolver{}, logger)

	visit, err := svc.Submit(s.ctx, "qr-front-door", map[string]string{
		"Full Name": "Jane", "Email": "jane@x.com",
	})
	s.Require().NoError(err)
	s.Nil(visit.VisitorID)

	stored, err := s.visits.FindByID(s.ctx, visit.ID)
	s.Require().NoError(err)
	s.Nil(stored.VisitorID)
}

func (s *IntakeSuite) TestUnknownQRNotFound() {
	_, err := s.svc.Submit(s.ctx, "qr-unknown", map[string]string{"Full Name": "Jane"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IntakeSuite) TestInactiveQRRejectedDistinctly() {
	s.Require().NoError(s.qrcodes.DeactivateByForm(s.ctx, s.form.ID, time.Now().UTC()))

	_, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{"Full Name": "Jane"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal("qr code is no longer active", dErrors.MessageOf(err))
}

func (s *IntakeSuite) TestInactiveFormRejectedDistinctly() {
	s.form.IsActive = false
	s.Require().NoError(s.forms.Update(s.ctx, s.form))

	_, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{"Full Name": "Jane"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal("form is no longer accepting submissions", dErrors.MessageOf(err))
}

func (s *IntakeSuite) TestPremiseMismatchIsConfigFault() {
	s.form.PremiseID = id.NewPremiseID()
	s.Require().NoError(s.forms.Update(s.ctx, s.form))

	_, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{"Full Name": "Jane"})
	s.True(dErrors.HasCode(err, dErrors.CodeConfigFault))
}

func (s *IntakeSuite) TestEmptySubmissionRejected() {
	_, err := s.svc.Submit(s.ctx, "qr-front-door", map[string]string{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

type failingResolver struct{}

func (failingResolver) ResolveOrCreate(context.Context, formdata.FormData) (*visitormodels.Visitor, error) {
	return nil, dErrors.New(dErrors.CodeInternal, "identity store unavailable")
}

func TestIntakeSuite(t *testing.T) {
	suite.Run(t, new(IntakeSuite))
}
