package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

func TestNewPremise(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	owner := id.NewUserID()

	p, err := NewPremise(id.NewPremiseID(), owner, "  Acme Lobby  ", " office ", "ab3de", now)
	require.NoError(t, err)
	assert.Equal(t, "Acme Lobby", p.Name)
	assert.Equal(t, "office", p.BusinessType)
	assert.Equal(t, "ab3de", p.FriendlyCode)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestNewPremiseInvariants(t *testing.T) {
	now := time.Now()
	owner := id.NewUserID()

	_, err := NewPremise(id.NewPremiseID(), owner, "   ", "", "code", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewPremise(id.NewPremiseID(), owner, strings.Repeat("x", 129), "", "code", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewPremise(id.NewPremiseID(), id.UserID{}, "Acme", "", "code", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewPremise(id.NewPremiseID(), owner, "Acme", "", "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestIsOwnedBy(t *testing.T) {
	owner := id.NewUserID()
	p, err := NewPremise(id.NewPremiseID(), owner, "Acme", "", "code", time.Now())
	require.NoError(t, err)

	assert.True(t, p.IsOwnedBy(owner))
	assert.False(t, p.IsOwnedBy(id.NewUserID()))
	assert.False(t, p.IsOwnedBy(id.UserID{}))
}
