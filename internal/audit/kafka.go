package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaRecorder publishes audit events to a Kafka topic. Produce failures are
// logged and swallowed so the business operation never depends on the broker.
type KafkaRecorder struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaRecorder connects to the brokers and ensures the audit topic exists.
func NewKafkaRecorder(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaRecorder, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		if !errors.Is(err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
	}

	return &KafkaRecorder{client: client, topic: topic, logger: logger}, nil
}

type wireEvent struct {
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ActorID   int64     `json:"actor_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Device    string    `json:"device,omitempty"`
}

// Record serializes the event and produces it asynchronously. Events for the
// same user share a key so per-user ordering is preserved.
func (r *KafkaRecorder) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(wireEvent(event))
	if err != nil {
		r.logger.ErrorContext(ctx, "audit event marshal failed",
			"action", event.Action,
			"error", err,
		)
		return
	}

	record := &kgo.Record{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: payload,
	}
	r.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			r.logger.Error("audit event publish failed",
				"action", event.Action,
				"user_id", event.UserID,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (r *KafkaRecorder) Close(ctx context.Context) error {
	if err := r.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush audit events: %w", err)
	}
	r.client.Close()
	return nil
}
