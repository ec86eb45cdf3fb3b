// Package emitter pushes gate reports to an external rendering surface
// over MQTT or Kafka.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/internal/config"
)

// ErrNotConnected is returned when publishing before Connect succeeded
var ErrNotConnected = errors.New("emitter: not connected")

// Publisher publishes gate reports to a message broker
type Publisher interface {
	// Connect establishes connection to the broker
	Connect(ctx context.Context) error
	// Publish sends one report
	Publish(ctx context.Context, report crowdgate.Report) error
	// Close releases the connection
	Close() error
	// Stats returns publishing statistics
	Stats() Stats
}

// Stats contains emitter statistics
type Stats struct {
	Kind      string `json:"kind"`
	Connected bool   `json:"connected"`
	Published uint64 `json:"published"`
	Errors    uint64 `json:"errors"`
}

// New returns the publisher selected by cfg.Kind
func New(cfg config.PublisherConfig) (Publisher, error) {
	switch cfg.Kind {
	case config.PublisherNone, "":
		return &NopEmitter{}, nil
	case config.PublisherMQTT:
		return NewMQTTEmitter(cfg.MQTT, cfg.Encoding), nil
	case config.PublisherKafka:
		return NewKafkaEmitter(cfg.Kafka, cfg.Encoding), nil
	default:
		return nil, fmt.Errorf("emitter: unknown publisher kind %q", cfg.Kind)
	}
}

// envelope is the wire format of a published report
type envelope struct {
	Type    string           `json:"type"`
	Version int              `json:"version"`
	Report  crowdgate.Report `json:"report"`
}

const (
	payloadType    = "gate_report"
	payloadVersion = 1
)

// Encode marshals a report into the published payload. encoding is
// "json" (the default when empty) or "msgpack"; msgpack keys follow the
// JSON field names.
func Encode(report crowdgate.Report, encoding string) ([]byte, error) {
	env := envelope{
		Type:    payloadType,
		Version: payloadVersion,
		Report:  report,
	}

	switch encoding {
	case config.EncodingJSON, "":
		payload, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return payload, nil

	case config.EncodingMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(env); err != nil {
			return nil, fmt.Errorf("failed to marshal msgpack report: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("emitter: unknown encoding %q", encoding)
	}
}

// contentType returns the MIME type of an encoding
func contentType(encoding string) string {
	if encoding == config.EncodingMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

// NopEmitter discards reports; used when no publisher is configured
type NopEmitter struct{}

// Connect does nothing
func (n *NopEmitter) Connect(ctx context.Context) error { return nil }

// Publish does nothing
func (n *NopEmitter) Publish(ctx context.Context, report crowdgate.Report) error { return nil }

// Close does nothing
func (n *NopEmitter) Close() error { return nil }

// Stats reports an always-connected, never-publishing emitter
func (n *NopEmitter) Stats() Stats { return Stats{Kind: config.PublisherNone, Connected: true} }
