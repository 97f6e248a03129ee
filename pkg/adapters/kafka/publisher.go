// Package kafka streams daily simulation snapshots to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/ports"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.SnapshotPublisher.
// Messages are keyed by simulation ID so that one simulation's days stay ordered
// within a partition.
type Publisher struct {
	w      messageWriter
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger configures a logger for the Publisher.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// DefaultBatchTimeout caps how long a write waits for a batch to fill.
const DefaultBatchTimeout = 10 * time.Millisecond

// NewWriter returns a hash-balanced writer for topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: DefaultBatchTimeout,
	}
}

// NewPublisher creates a Publisher writing to brokers/topic.
func NewPublisher(brokers []string, topic string, opts ...Option) *Publisher {
	return newPublisher(NewWriter(brokers, topic), opts...)
}

func newPublisher(w messageWriter, opts ...Option) *Publisher {
	p := &Publisher{w: w, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Encode turns a step event into a Kafka message.
func Encode(event *domain.StepEvent) (kafka.Message, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal step event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.SimulationID),
		Value: b,
		Time:  event.Timestamp,
	}, nil
}

// Publish writes one step event.
func (p *Publisher) Publish(ctx context.Context, event *domain.StepEvent) error {
	msg, err := Encode(event)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write failed", "err", err, "sim_id", event.SimulationID, "day", event.Day)
		return fmt.Errorf("kafka write: %w", err)
	}
	p.logger.Debug("published snapshot", "sim_id", event.SimulationID, "day", event.Day)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

var _ ports.SnapshotPublisher = (*Publisher)(nil)
