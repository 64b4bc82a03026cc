//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/visitor/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/testutil/containers"
)

func newVisitor(t *testing.T, email, phone, fullName string) *models.Visitor {
	t.Helper()
	v, err := models.NewVisitor(id.NewVisitorID(), email, phone, fullName, "", time.Now().UTC())
	require.NoError(t, err)
	return v
}

func TestPostgresVisitorRoundtrip(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	v := newVisitor(t, "dana@example.com", "+15550100", "Dana Osei")
	require.NoError(t, s.Create(ctx, v))

	byEmail, err := s.FindByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, v.ID, byEmail.ID)

	byPhone, err := s.FindByPhone(ctx, "+15550100")
	require.NoError(t, err)
	assert.Equal(t, v.ID, byPhone.ID)

	byID, err := s.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Osei", byID.FullName)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// The partial unique indexes on email and phone are what let two racing
// provision attempts resolve to a single identity: the loser's insert fails
// with ErrAlreadyUsed and falls back to lookup.
func TestPostgresVisitorUniqueViolations(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newVisitor(t, "dana@example.com", "+15550100", "Dana Osei")))

	err := s.Create(ctx, newVisitor(t, "dana@example.com", "", "Impostor"))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	err = s.Create(ctx, newVisitor(t, "other@example.com", "+15550100", "Impostor"))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

// Visitors without contact details must not collide with each other: the
// unique indexes only cover non-empty values.
func TestPostgresVisitorEmptyContactNotUnique(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	s := NewPostgres(db.DB)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newVisitor(t, "", "", "First Walk-in")))
	require.NoError(t, s.Create(ctx, newVisitor(t, "", "", "Second Walk-in")))
}
