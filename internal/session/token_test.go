package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/session/revocation"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

func TestValidateToken(t *testing.T) {
	svc := NewTokenService("test-signing-key", "gatepass")
	principal := id.NewUserID()

	token, err := svc.GenerateToken(principal, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.PrincipalID)
	assert.NotEmpty(t, claims.JTI)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-signing-key", "gatepass")

	token, err := svc.GenerateToken(id.NewUserID(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	svc := NewTokenService("test-signing-key", "gatepass")
	other := NewTokenService("different-key", "gatepass")

	token, err := other.GenerateToken(id.NewUserID(), time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-signing-key", "gatepass")
	_, err := svc.ValidateToken("not-a-jwt")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMemoryTRL(t *testing.T) {
	ctx := context.Background()
	trl := revocation.NewMemoryTRL()

	revoked, err := trl.IsRevoked(ctx, "some-jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, trl.RevokeToken(ctx, "some-jti", time.Hour))
	revoked, err = trl.IsRevoked(ctx, "some-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, trl.RevokeToken(ctx, "stale-jti", -time.Minute))
	revoked, err = trl.IsRevoked(ctx, "stale-jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
