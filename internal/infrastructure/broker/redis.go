// Package broker publishes notifications and ledger events over Redis pub/sub.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

// EventChannelPrefix prefixes the channel of every relayed ledger event.
const EventChannelPrefix = "events."

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("broker: ping: %w", err)
	}
	return client, nil
}

// Publisher sends JSON payloads to Redis channels.
type Publisher struct {
	client redis.UniversalClient
}

var (
	_ notification.Publisher = (*Publisher)(nil)
	_ postgres.OutboxHandler = (*Publisher)(nil)
)

// NewPublisher creates a publisher on top of an existing client.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

// Publish marshals payload and publishes it to topic.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal %s: %w", topic, err)
	}
	if err := p.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("broker: publish %s: %w", topic, err)
	}
	return nil
}

// EventEnvelope is the message relayed for one outbox row.
type EventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     string          `json:"eventType"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// EventChannel is the channel an event type is relayed on.
func EventChannel(eventType string) string {
	return EventChannelPrefix + eventType
}

// Handle relays an outbox message to its event channel.
func (p *Publisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return p.Publish(ctx, EventChannel(msg.EventType), EventEnvelope{
		ID:            msg.ID.String(),
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID.String(),
		EventType:     msg.EventType,
		Payload:       payload,
		OccurredAt:    msg.CreatedAt,
	})
}
