package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatepass/pkg/domain"
	audit "gatepass/pkg/platform/audit"
	auditmemory "gatepass/pkg/platform/audit/store/memory"
	"gatepass/pkg/requestcontext"
)

func TestEmitStampsContextMetadata(t *testing.T) {
	store := auditmemory.New()
	pub := audit.NewPublisher(store)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	premiseID := id.NewPremiseID()
	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action:    string(audit.EventVisitApproved),
		PremiseID: premiseID,
	}))

	events := store.All()
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, premiseID, events[0].PremiseID)
}

func TestEmitKeepsExplicitMetadata(t *testing.T) {
	store := auditmemory.New()
	pub := audit.NewPublisher(store)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "from-context")

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action:    string(audit.EventVisitDenied),
		Timestamp: at,
		RequestID: "explicit",
		Reason:    "no appointment",
	}))

	events := store.All()
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].Timestamp)
	assert.Equal(t, "explicit", events[0].RequestID)
}

func TestListByPremiseFilters(t *testing.T) {
	store := auditmemory.New()
	pub := audit.NewPublisher(store)
	ctx := context.Background()

	mine := id.NewPremiseID()
	other := id.NewPremiseID()
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "a", PremiseID: mine}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "b", PremiseID: other}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: "c", PremiseID: mine}))

	events := store.ListByPremise(ctx, mine)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Action)
	assert.Equal(t, "c", events[1].Action)
}
