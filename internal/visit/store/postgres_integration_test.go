//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formmodels "gatepass/internal/form/models"
	formstore "gatepass/internal/form/store/form"
	qrstore "gatepass/internal/form/store/qrcode"
	premisemodels "gatepass/internal/premise/models"
	premisestore "gatepass/internal/premise/store"
	"gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/formdata"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/testutil/containers"
)

type visitFixture struct {
	ownerID   id.UserID
	premiseID id.PremiseID
	formID    id.FormID
	qrcodeID  id.QRCodeID
}

// seedVisitFixture creates the premise, form and QR code rows a visit
// references.
func seedVisitFixture(t *testing.T, db *containers.PostgresContainer) visitFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	fx := visitFixture{
		ownerID:   id.NewUserID(),
		premiseID: id.NewPremiseID(),
		formID:    id.NewFormID(),
		qrcodeID:  id.NewQRCodeID(),
	}

	premise, err := premisemodels.NewPremise(fx.premiseID, fx.ownerID,
		"Harbor Lofts", "residential", "harbor-lofts", now)
	require.NoError(t, err)
	require.NoError(t, premisestore.NewPostgres(db.DB).CreateIfOwnerAvailable(ctx, premise))

	form, err := formmodels.NewForm(fx.formID, fx.premiseID, "Front Desk",
		[]formmodels.FieldDefinition{{Label: "Full Name", InputKind: formmodels.InputText, Required: true}}, now)
	require.NoError(t, err)
	require.NoError(t, formstore.NewPostgres(db.DB).Create(ctx, form))

	require.NoError(t, qrstore.NewPostgres(db.DB).Create(ctx, &formmodels.QRCode{
		ID:         fx.qrcodeID,
		FormID:     fx.formID,
		PremiseID:  fx.premiseID,
		Identifier: "qr-" + fx.qrcodeID.String(),
		IsActive:   true,
		CreatedAt:  now,
	}))

	return fx
}

func newStoredVisit(t *testing.T, s *Postgres, fx visitFixture) *models.Visit {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	visit, err := models.NewVisit(id.NewVisitID(), fx.premiseID, fx.formID, fx.qrcodeID, 1,
		formdata.Normalize(map[string]string{"Full Name": "Dana Osei"}), now)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), visit))
	return visit
}

func TestPostgresVisitRoundtrip(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	visit := newStoredVisit(t, s, fx)

	got, err := s.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, visit.ID, got.ID)
	assert.Equal(t, models.StatusPendingApproval, got.Status)
	assert.Equal(t, "Dana Osei", got.FormData.FullName())
	assert.Nil(t, got.VisitorID)
	assert.Nil(t, got.CheckOutTime)

	_, err = s.FindByID(ctx, id.NewVisitID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresVisitExecuteTransition(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	visit := newStoredVisit(t, s, fx)
	decidedAt := time.Now().UTC().Truncate(time.Microsecond)

	updated, err := s.Execute(ctx, visit.ID,
		func(v *models.Visit) error { return v.CanApprove() },
		func(v *models.Visit) { v.ApplyApproval(fx.ownerID, decidedAt) })
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	got, err := s.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, fx.ownerID, *got.DecidedBy)
}

func TestPostgresVisitExecuteValidateFailureLeavesRow(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	visit := newStoredVisit(t, s, fx)

	_, err := s.Execute(ctx, visit.ID,
		func(v *models.Visit) error { return v.CanCheckout() },
		func(v *models.Visit) { v.ApplyCheckout(time.Now()) })
	require.Error(t, err)

	got, err := s.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, got.Status)
	assert.Nil(t, got.CheckOutTime)
}

// Concurrent approvals of the same visit must serialize on the row lock so
// exactly one wins and the rest fail their precondition.
func TestPostgresVisitExecuteConcurrentApprovals(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	visit := newStoredVisit(t, s, fx)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Execute(ctx, visit.ID,
				func(v *models.Visit) error { return v.CanApprove() },
				func(v *models.Visit) { v.ApplyApproval(fx.ownerID, time.Now().UTC()) })
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one approval should win")

	got, err := s.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestPostgresVisitListByPremise(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	first := newStoredVisit(t, s, fx)
	second := newStoredVisit(t, s, fx)

	_, err := s.Execute(ctx, first.ID,
		func(v *models.Visit) error { return v.CanDeny() },
		func(v *models.Visit) { v.ApplyDenial(fx.ownerID, "no appointment", time.Now().UTC()) })
	require.NoError(t, err)

	all, err := s.ListByPremise(ctx, fx.premiseID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending := models.StatusPendingApproval
	filtered, err := s.ListByPremise(ctx, fx.premiseID, &pending)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)
}

func TestPostgresVisitLinkVisitor(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	visit := newStoredVisit(t, s, fx)
	visitorID := seedVisitor(t, db)

	require.NoError(t, s.LinkVisitor(ctx, visit.ID, visitorID, time.Now().UTC()))

	got, err := s.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VisitorID)
	assert.Equal(t, visitorID, *got.VisitorID)

	err = s.LinkVisitor(ctx, id.NewVisitID(), visitorID, time.Now().UTC())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresVisitSurvivesVisitorDeletion(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	fx := seedVisitFixture(t, db)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	visit := newStoredVisit(t, s, fx)
	visitorID := seedVisitor(t, db)
	require.NoError(t, s.LinkVisitor(ctx, visit.ID, visitorID, time.Now().UTC()))

	_, err := db.DB.ExecContext(ctx, `DELETE FROM visitors WHERE id = $1`, visitorID.String())
	require.NoError(t, err)

	got, err := s.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VisitorID)
}

func seedVisitor(t *testing.T, db *containers.PostgresContainer) id.VisitorID {
	t.Helper()
	visitorID := id.NewVisitorID()
	_, err := db.DB.ExecContext(context.Background(), `
		INSERT INTO visitors (id, email, phone, full_name, id_number, created_at, updated_at)
		VALUES ($1, $2, '', 'Dana Osei', '', NOW(), NOW())
	`, visitorID.String(), visitorID.String()+"@example.com")
	require.NoError(t, err)
	return visitorID
}
