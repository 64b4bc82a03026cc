package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/authz"
	"gatepass/internal/form/models"
	formstore "gatepass/internal/form/store/form"
	qrstore "gatepass/internal/form/store/qrcode"
	premisemodels "gatepass/internal/premise/models"
	premiseservice "gatepass/internal/premise/service"
	premisestore "gatepass/internal/premise/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

type FormServiceSuite struct {
	suite.Suite
	ctx      context.Context
	owner    id.UserID
	stranger id.UserID
	premise  *premisemodels.Premise
	forms    *formstore.InMemory
	qrcodes  *qrstore.InMemory
	svc      *Service
}

func (s *FormServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s.owner = id.NewUserID()
	s.stranger = id.NewUserID()

	premises := premisestore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := premisemodels.NewPremise(id.NewPremiseID(), s.owner, "Acme Lobby", "office", "ab3de", requestcontext.Now(s.ctx))
	s.Require().NoError(err)
	s.Require().NoError(premises.CreateIfOwnerAvailable(s.ctx, p))
	s.premise = p

	guard := authz.NewGuard(premiseservice.New(premises, logger))
	s.forms = formstore.NewInMemory()
	s.qrcodes = qrstore.NewInMemory()
	s.svc = New(s.forms, s.qrcodes, premises, guard, logger)
}

func (s *FormServiceSuite) createForm() *models.Form {
	f, err := s.svc.Create(s.ctx, s.owner, CreateInput{
		Name: "Visitor Sign-In",
		Fields: []models.FieldDefinition{
			{Label: "Full Name", InputKind: models.InputText, Required: true},
			{Label: "Email", InputKind: models.InputEmail},
		},
	})
	s.Require().NoError(err)
	return f
}

func (s *FormServiceSuite) TestCreate() {
	f := s.createForm()
	s.Equal(s.premise.ID, f.PremiseID)
	s.True(f.IsActive)
	s.Equal(1, f.Version)
	s.Len(f.Fields, 2)
}

func (s *FormServiceSuite) TestCreateWithoutPremise() {
	_, err := s.svc.Create(s.ctx, s.stranger, CreateInput{
		Name:   "Orphan",
		Fields: []models.FieldDefinition{{Label: "Name", InputKind: models.InputText}},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *FormServiceSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, s.owner, CreateInput{Name: "No Fields"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Create(s.ctx, s.owner, CreateInput{
		Name:   "Bad Kind",
		Fields: []models.FieldDefinition{{Label: "Name", InputKind: "dropdown"}},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *FormServiceSuite) TestUpdateBumpsVersion() {
	f := s.createForm()
	name := "After Hours Sign-In"
	updated, err := s.svc.Update(s.ctx, s.owner, f.ID, UpdateInput{Name: &name})
	s.Require().NoError(err)
	s.Equal("After Hours Sign-In", updated.Name)
	s.Equal(2, updated.Version)
}

func (s *FormServiceSuite) TestUpdateForeignFormForbidden() {
	f := s.createForm()
	name := "Hijacked"
	_, err := s.svc.Update(s.ctx, s.stranger, f.ID, UpdateInput{Name: &name})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *FormServiceSuite) TestGetUnknownFormNotFound() {
	_, err := s.svc.Get(s.ctx, s.owner, id.NewFormID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *FormServiceSuite) TestSetActive() {
	f := s.createForm()
	deactivated, err := s.svc.SetActive(s.ctx, s.owner, f.ID, false)
	s.Require().NoError(err)
	s.False(deactivated.IsActive)

	reloaded, err := s.svc.Get(s.ctx, s.owner, f.ID)
	s.Require().NoError(err)
	s.False(reloaded.IsActive)
}

func (s *FormServiceSuite) TestDeleteBlockedByQRReference() {
	f := s.createForm()
	_, err := s.svc.GetQRCode(s.ctx, s.owner, f.ID)
	s.Require().NoError(err)

	err = s.svc.Delete(s.ctx, s.owner, f.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *FormServiceSuite) TestDeleteWithoutReferences() {
	f := s.createForm()
	s.Require().NoError(s.svc.Delete(s.ctx, s.owner, f.ID))

	_, err := s.svc.Get(s.ctx, s.owner, f.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *FormServiceSuite) TestEnsureQRCodeIsIdempotent() {
	f := s.createForm()
	first, err := s.svc.EnsureQRCode(s.ctx, f.ID)
	s.Require().NoError(err)
	s.True(first.IsActive)
	s.NotEmpty(first.Identifier)

	second, err := s.svc.EnsureQRCode(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.Identifier, second.Identifier)
}

func (s *FormServiceSuite) TestRegenerateQRCode() {
	f := s.createForm()
	old, err := s.svc.GetQRCode(s.ctx, s.owner, f.ID)
	s.Require().NoError(err)

	fresh, err := s.svc.RegenerateQRCode(s.ctx, s.owner, f.ID)
	s.Require().NoError(err)
	s.NotEqual(old.Identifier, fresh.Identifier)

	stale, err := s.qrcodes.FindByIdentifier(s.ctx, old.Identifier)
	s.Require().NoError(err)
	s.False(stale.IsActive)

	active, err := s.qrcodes.FindActiveByForm(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(fresh.ID, active.ID)
}

func TestFormServiceSuite(t *testing.T) {
	suite.Run(t, new(FormServiceSuite))
}
