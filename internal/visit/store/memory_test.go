package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/formdata"
	"gatepass/pkg/platform/sentinel"
)

func seedVisit(t *testing.T, s *InMemory, premiseID id.PremiseID) *models.Visit {
	t.Helper()
	v, err := models.NewVisit(
		id.NewVisitID(), premiseID, id.NewFormID(), id.NewQRCodeID(),
		1, formdata.Normalize(map[string]string{"Full Name": "Jane"}),
		time.Now().UTC(),
	)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), v))
	return v
}

func TestCreateAndFind(t *testing.T) {
	s := NewInMemory()
	v := seedVisit(t, s, id.NewPremiseID())

	found, err := s.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)
	assert.Equal(t, "Jane", found.FormData.Normalized["full_name"])

	// mutations of the returned copy must not leak into the store
	found.Status = models.StatusApproved
	again, err := s.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, again.Status)
}

func TestFindMissing(t *testing.T) {
	s := NewInMemory()
	_, err := s.FindByID(context.Background(), id.NewVisitID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestListByPremise(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	premiseID := id.NewPremiseID()

	first := seedVisit(t, s, premiseID)
	second := seedVisit(t, s, premiseID)
	seedVisit(t, s, id.NewPremiseID())

	_, err := s.Execute(ctx, second.ID,
		func(v *models.Visit) error { return v.CanApprove() },
		func(v *models.Visit) { v.ApplyApproval(id.NewUserID(), time.Now().UTC()) },
	)
	require.NoError(t, err)

	all, err := s.ListByPremise(ctx, premiseID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved := models.StatusApproved
	filtered, err := s.ListByPremise(ctx, premiseID, &approved)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)
	assert.NotEqual(t, first.ID, filtered[0].ID)
}

func TestExecuteValidateFailureLeavesVisitUntouched(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	v := seedVisit(t, s, id.NewPremiseID())

	_, err := s.Execute(ctx, v.ID,
		func(v *models.Visit) error { return v.CanCheckout() },
		func(v *models.Visit) { v.ApplyCheckout(time.Now().UTC()) },
	)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	reloaded, err := s.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, reloaded.Status)
}

func TestConcurrentApproveExactlyOneSucceeds(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	v := seedVisit(t, s, id.NewPremiseID())

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Execute(ctx, v.ID,
				func(v *models.Visit) error { return v.CanApprove() },
				func(v *models.Visit) { v.ApplyApproval(id.NewUserID(), time.Now().UTC()) },
			)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
}

func TestLinkVisitor(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	v := seedVisit(t, s, id.NewPremiseID())
	visitorID := id.NewVisitorID()

	require.NoError(t, s.LinkVisitor(ctx, v.ID, visitorID, time.Now().UTC()))

	reloaded, err := s.FindByID(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.VisitorID)
	assert.Equal(t, visitorID, *reloaded.VisitorID)

	err = s.LinkVisitor(ctx, id.NewVisitID(), visitorID, time.Now().UTC())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
