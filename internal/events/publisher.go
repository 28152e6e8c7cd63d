// Package events streams engine activity to Kafka for downstream
// consumers (analytics, moderation). Publishing is best effort: the engine
// never fails a user operation because the event stream is down.
package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"wanderlink/backend/internal/logger"
)

const (
	KindContactSent     = "contact.sent"
	KindContactAccepted = "contact.accepted"
	KindContactDeclined = "contact.declined"
	KindSOSCreated      = "sos.created"
	KindSOSOffer        = "sos.offer"
	KindSOSResolved     = "sos.resolved"
	KindNotification    = "notification.created"
	KindChatMessage     = "chat.message"
)

type Publisher interface {
	Publish(ctx context.Context, kind string, payload any)
	Close() error
}

type envelope struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// KafkaPublisher writes one JSON envelope per engine event.
type KafkaPublisher struct {
	writer *kafkago.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, kind string, payload any) {
	b, err := json.Marshal(envelope{Kind: kind, Timestamp: time.Now().UTC(), Payload: payload})
	if err != nil {
		logger.Log.Warnw("event marshal failed", "kind", kind, "error", err)
		return
	}
	msg := kafkago.Message{
		Key:   []byte(kind),
		Value: b,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Warnw("event publish failed", "kind", kind, "error", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. Used when no brokers are configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}
func (Nop) Close() error                         { return nil }
