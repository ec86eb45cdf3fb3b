package emitter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/internal/config"
)

// messageWriter is the subset of *kafka.Writer the emitter uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter publishes reports to a Kafka topic, keyed by report ID
type KafkaEmitter struct {
	cfg      config.KafkaConfig
	encoding string
	writer   messageWriter

	mu        sync.Mutex
	published uint64
	errors    uint64
}

// NewKafkaEmitter creates a new Kafka emitter (writer created on Connect)
func NewKafkaEmitter(cfg config.KafkaConfig, encoding string) *KafkaEmitter {
	return &KafkaEmitter{cfg: cfg, encoding: encoding}
}

// Connect creates the writer. kafka-go dials lazily, so broker problems
// surface on the first Publish.
func (e *KafkaEmitter) Connect(ctx context.Context) error {
	if e.writer != nil {
		return nil
	}
	e.writer = &kafka.Writer{
		Addr:         kafka.TCP(e.cfg.Brokers...),
		Topic:        e.cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	slog.Info("emitter: kafka writer ready", "brokers", e.cfg.Brokers, "topic", e.cfg.Topic)
	return nil
}

// Publish writes one report
func (e *KafkaEmitter) Publish(ctx context.Context, report crowdgate.Report) error {
	if e.writer == nil {
		e.countError()
		return ErrNotConnected
	}

	payload, err := Encode(report, e.encoding)
	if err != nil {
		e.countError()
		return err
	}

	msg := kafka.Message{
		Key:   []byte(report.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(contentType(e.encoding))},
		},
	}
	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		e.countError()
		return fmt.Errorf("kafka write failed: %w", err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()

	slog.Debug("emitter: report published",
		"topic", e.cfg.Topic,
		"size", len(payload),
		"report_id", report.ID,
	)
	return nil
}

// Close flushes and closes the writer
func (e *KafkaEmitter) Close() error {
	if e.writer == nil {
		return nil
	}
	err := e.writer.Close()
	e.writer = nil
	return err
}

// Stats returns emitter statistics
func (e *KafkaEmitter) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Kind:      config.PublisherKafka,
		Connected: e.writer != nil,
		Published: e.published,
		Errors:    e.errors,
	}
}

func (e *KafkaEmitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
