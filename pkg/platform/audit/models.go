// Package audit captures the append-only trail of submissions and visit
// decisions. Events are emitted from domain services, appended to a store
// (memory or a postgres outbox), and optionally relayed to Kafka by the
// outbox worker.
package audit

import (
	"context"
	"time"

	id "gatepass/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    string

	PremiseID id.PremiseID
	VisitID   id.VisitID
	VisitorID id.VisitorID

	// ActorID is the premise-owner principal for owner-initiated actions;
	// empty for visitor-initiated submissions.
	ActorID id.UserID
	// Reason carries the denial reason for visit_denied events.
	Reason string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}

// AuditEvent names the actions recorded on the trail.
type AuditEvent string

const (
	EventVisitSubmitted  AuditEvent = "visit_submitted"
	EventVisitApproved   AuditEvent = "visit_approved"
	EventVisitDenied     AuditEvent = "visit_denied"
	EventVisitCheckedOut AuditEvent = "visit_checked_out"
	EventVisitorLinked   AuditEvent = "visitor_linked"

	EventPremiseCreated AuditEvent = "premise_created"
	EventFormCreated    AuditEvent = "form_created"
	EventFormUpdated    AuditEvent = "form_updated"
	EventQRRegenerated  AuditEvent = "qrcode_regenerated"
)

// Store is the append-only sink behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
}
