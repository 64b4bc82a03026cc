package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "gatepass/pkg/platform/audit"
	txcontext "gatepass/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table in the same transaction as the
// domain write (when one is in context) and relayed to Kafka by the outbox
// worker.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure relayed to Kafka. Field names match
// audit.Event so the consumer can deserialize without a schema registry.
type outboxPayload struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	PremiseID string `json:"premise_id,omitempty"`
	VisitID   string `json:"visit_id,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Append writes an audit event to the outbox table for later publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:        eventID.String(),
		Action:    event.Action,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Reason:    event.Reason,
		RequestID: event.RequestID,
	}
	if !event.PremiseID.IsNil() {
		payload.PremiseID = event.PremiseID.String()
	}
	if !event.VisitID.IsNil() {
		payload.VisitID = event.VisitID.String()
	}
	if !event.VisitorID.IsNil() {
		payload.VisitorID = event.VisitorID.String()
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, aggregate_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	aggregateID := payload.VisitID
	if aggregateID == "" {
		aggregateID = payload.PremiseID
	}
	if _, err := s.execer(ctx).ExecContext(ctx, query,
		eventID, aggregateID, event.Action, payloadBytes, event.Timestamp); err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

// OutboxRow is one unpublished outbox entry.
type OutboxRow struct {
	ID      uuid.UUID
	Action  string
	Payload []byte
}

// FetchUnpublished returns up to limit unpublished rows in insertion order.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox rows: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Action, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MarkPublished stamps rows as relayed so they are not re-sent.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE audit_outbox SET published_at = $1 WHERE id = ANY($2)`
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	if _, err := s.db.ExecContext(ctx, query, at, pq.Array(args)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
