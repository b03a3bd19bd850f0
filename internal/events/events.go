// Package events announces finished ingestion runs on Kafka so downstream
// consumers (alerting, archival) can react to new snapshots.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ignite/meter-dashboard/internal/config"
	"github.com/ignite/meter-dashboard/internal/domain"
	"github.com/ignite/meter-dashboard/internal/metrics"
)

// IngestEvent is the message value published per run.
type IngestEvent struct {
	RunID       string                 `json:"run_id"`
	Room        string                 `json:"room"`
	Source      string                 `json:"source"`
	Status      domain.IngestionStatus `json:"status"`
	Error       string                 `json:"error,omitempty"`
	SnapshotID  string                 `json:"snapshot_id,omitempty"`
	Kept        int                    `json:"kept"`
	Dropped     int                    `json:"dropped"`
	TotalAmount float64                `json:"total_amount"`
	StatusLevel metrics.Level          `json:"status_level,omitempty"`
	FinishedAt  time.Time              `json:"finished_at"`
}

// NewIngestEvent builds the event for run. budget may be nil for failed runs.
func NewIngestEvent(run *domain.IngestionRun, budget *metrics.BudgetStatus) IngestEvent {
	ev := IngestEvent{
		RunID:      run.ID,
		Room:       run.Room,
		Source:     run.Source,
		Status:     run.Status,
		Error:      run.Error,
		SnapshotID: run.SnapshotID,
		Kept:       run.Kept,
		Dropped:    run.Dropped,
		FinishedAt: run.FinishedAt,
	}
	if budget != nil {
		ev.TotalAmount = budget.Amount
		ev.StatusLevel = budget.Level
	}
	return ev
}

// Publisher sends ingest events.
type Publisher interface {
	Publish(ctx context.Context, ev IngestEvent) error
	Close() error
}

// New returns a Kafka publisher when brokers are configured, otherwise a
// publisher that drops every event.
func New(cfg config.EventsConfig) Publisher {
	if len(cfg.Brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	})
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by room, so every room's history lands
// on one partition in order.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev IngestEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal ingest event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Room),
		Value: b,
		Time:  ev.FinishedAt,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(ev.Status)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish ingest event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, IngestEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }
