package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

type stubOwners struct {
	owners map[id.PremiseID]id.UserID
	err    error
}

func (s *stubOwners) FindOwner(_ context.Context, premiseID id.PremiseID) (id.UserID, error) {
	if s.err != nil {
		return id.UserID{}, s.err
	}
	return s.owners[premiseID], nil
}

type stubResource struct{ premiseID id.PremiseID }

func (r stubResource) OwningPremise() id.PremiseID { return r.premiseID }

func TestRequireOwnerAllowsOwner(t *testing.T) {
	owner := id.NewUserID()
	premiseID := id.NewPremiseID()
	guard := NewGuard(&stubOwners{owners: map[id.PremiseID]id.UserID{premiseID: owner}})

	assert.NoError(t, guard.RequireOwner(context.Background(), owner, premiseID))
}

func TestRequireOwnerForbidsStranger(t *testing.T) {
	premiseID := id.NewPremiseID()
	guard := NewGuard(&stubOwners{owners: map[id.PremiseID]id.UserID{premiseID: id.NewUserID()}})

	err := guard.RequireOwner(context.Background(), id.NewUserID(), premiseID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestRequireOwnerRejectsNilPrincipal(t *testing.T) {
	guard := NewGuard(&stubOwners{})

	err := guard.RequireOwner(context.Background(), id.UserID{}, id.NewPremiseID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestRequireOwnerPropagatesResolverFault(t *testing.T) {
	fault := dErrors.New(dErrors.CodeConfigFault, "premise missing for linked resource")
	guard := NewGuard(&stubOwners{err: fault})

	err := guard.RequireOwner(context.Background(), id.NewUserID(), id.NewPremiseID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigFault))
}

func TestRequireResourceOwner(t *testing.T) {
	owner := id.NewUserID()
	premiseID := id.NewPremiseID()
	guard := NewGuard(&stubOwners{owners: map[id.PremiseID]id.UserID{premiseID: owner}})

	assert.NoError(t, guard.RequireResourceOwner(context.Background(), owner, stubResource{premiseID}))

	err := guard.RequireResourceOwner(context.Background(), id.NewUserID(), stubResource{premiseID})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}
