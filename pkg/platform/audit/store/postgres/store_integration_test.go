//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatepass/pkg/domain"
	audit "gatepass/pkg/platform/audit"
	"gatepass/pkg/testutil/containers"
)

func TestOutboxAppendFetchMark(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	s := New(db.DB)
	ctx := context.Background()

	premiseID := id.NewPremiseID()
	visitID := id.NewVisitID()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, s.Append(ctx, audit.Event{
		Timestamp: now,
		Action:    string(audit.EventVisitSubmitted),
		PremiseID: premiseID,
		VisitID:   visitID,
		RequestID: "req-1",
	}))
	require.NoError(t, s.Append(ctx, audit.Event{
		Timestamp: now.Add(time.Second),
		Action:    string(audit.EventVisitDenied),
		PremiseID: premiseID,
		VisitID:   visitID,
		ActorID:   id.NewUserID(),
		Reason:    "no appointment",
	}))

	rows, err := s.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, string(audit.EventVisitSubmitted), rows[0].Action)
	assert.Equal(t, string(audit.EventVisitDenied), rows[1].Action)

	var payload struct {
		VisitID string `json:"visit_id"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rows[1].Payload, &payload))
	assert.Equal(t, visitID.String(), payload.VisitID)
	assert.Equal(t, "no appointment", payload.Reason)

	require.NoError(t, s.MarkPublished(ctx, []uuid.UUID{rows[0].ID}, now.Add(time.Minute)))

	remaining, err := s.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, rows[1].ID, remaining[0].ID)
}

func TestOutboxMarkPublishedEmptyIsNoop(t *testing.T) {
	db := containers.NewPostgresContainer(t)
	s := New(db.DB)

	require.NoError(t, s.MarkPublished(context.Background(), nil, time.Now()))
}
