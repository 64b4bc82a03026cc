package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

func TestParseVisitIDRoundtrip(t *testing.T) {
	want := id.NewVisitID()

	got, err := id.ParseVisitID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"not a uuid":    "not-a-uuid",
		"nil uuid":      uuid.Nil.String(),
		"truncated":     "7b6d5c4e-0000",
		"trailing junk": uuid.New().String() + "x",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := id.ParseUserID(raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestIsNil(t *testing.T) {
	var zero id.PremiseID
	assert.True(t, zero.IsNil())
	assert.False(t, id.NewPremiseID().IsNil())
}
