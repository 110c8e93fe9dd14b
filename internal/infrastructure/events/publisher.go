// Package events publishes finalized transcript segments to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-insights/pkg/config"
)

// SegmentEvent is the payload written for every finalized segment
type SegmentEvent struct {
	SessionID string    `json:"session_id"`
	Sequence  int       `json:"sequence"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes finalized segments to a Kafka topic. When Kafka is
// disabled it only logs at debug level.
type Publisher struct {
	writer  *kafka.Writer
	topic   string
	enabled bool
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPublisher creates a Kafka segment publisher
func NewPublisher(cfg *config.KafkaConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info("Kafka disabled, segment events are log-only")
		p := &Publisher{enabled: false, logger: logger, metrics: m}
		if cfg != nil {
			p.topic = cfg.Topic
		}
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	topic := cfg.Topic
	// Writes are async; delivery results arrive through Completion
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
		Completion: func(messages []kafka.Message, err error) {
			for range messages {
				m.RecordKafkaPublish(topic, err)
			}
			if err != nil {
				logger.Error("Failed to write to Kafka",
					zap.Error(err),
					zap.String("topic", topic),
					zap.Int("messages", len(messages)),
				)
			}
		},
	}

	logger.Info("Kafka publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)

	return &Publisher{
		writer:  writer,
		topic:   cfg.Topic,
		enabled: true,
		logger:  logger,
		metrics: m,
	}
}

// PublishSegment queues one finalized segment keyed by session id, so all
// segments of a session land on the same partition in order
func (p *Publisher) PublishSegment(ctx context.Context, sessionID string, sequence int, segment entities.TranscriptSegment) error {
	event := SegmentEvent{
		SessionID: sessionID,
		Sequence:  sequence,
		Text:      segment.Text,
		Timestamp: segment.Timestamp,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.logger.Debug("Publishing segment",
		zap.String("topic", p.topic),
		zap.String("session_id", event.SessionID),
		zap.Int("sequence", event.Sequence),
	)

	if !p.enabled || p.writer == nil {
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("transcript.final")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.RecordKafkaPublish(p.topic, err)
		return err
	}
	return nil
}

// Close closes the Kafka writer
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
