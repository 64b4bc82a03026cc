// Package worker relays unpublished audit outbox rows to Kafka. The outbox
// table is the source of durability: a crash between produce and
// mark-published re-sends rows, so consumers must tolerate duplicates.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	auditpg "gatepass/pkg/platform/audit/store/postgres"
)

const (
	batchSize    = 100
	pollInterval = 2 * time.Second
)

// Worker polls the outbox and produces events to the audit topic.
type Worker struct {
	outbox *auditpg.Store
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects to Kafka and ensures the audit topic exists.
func New(brokers []string, topic string, outbox *auditpg.Store, logger *slog.Logger) (*Worker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Worker{outbox: outbox, client: client, topic: topic, logger: logger}, nil
}

func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %q: %w", topic, resp.Err)
	}
	return nil
}

// Run polls until the context is cancelled. Publish failures are logged and
// retried on the next tick; rows are only marked published after Kafka acks.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	defer w.client.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.relayBatch(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

func (w *Worker) relayBatch(ctx context.Context) error {
	rows, err := w.outbox.FetchUnpublished(ctx, batchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		record := &kgo.Record{
			Topic: w.topic,
			Key:   []byte(row.Action),
			Value: row.Payload,
		}
		if err := w.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			// stop the batch; unpublished rows are picked up next tick
			w.logger.WarnContext(ctx, "audit event produce failed",
				"event_id", row.ID, "error", err)
			break
		}
		published = append(published, row.ID)
	}

	if len(published) == 0 {
		return nil
	}
	return w.outbox.MarkPublished(ctx, published, time.Now().UTC())
}
