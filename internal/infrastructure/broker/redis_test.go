package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func receive(t *testing.T, sub *redis.PubSub) *redis.Message {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestPublisher_PublishNotification(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)

	userID := id.New()
	topic := notification.Topic(userID)
	sub := client.Subscribe(ctx, topic)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewPublisher(client)
	require.NoError(t, pub.Publish(ctx, topic, notification.Payload{ID: userID, Title: "Stock", Message: "Low stock"}))

	msg := receive(t, sub)
	assert.Equal(t, topic, msg.Channel)

	var got notification.Payload
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, "Stock", got.Title)
	assert.Equal(t, "Low stock", got.Message)
}

func TestPublisher_HandleOutboxMessage(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)

	sub := client.Subscribe(ctx, EventChannel("receipt.created"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	msg := &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "receipt",
		AggregateID:   id.New(),
		EventType:     "receipt.created",
		Payload:       []byte(`{"totalPrice":"150"}`),
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, NewPublisher(client).Handle(ctx, msg))

	var env EventEnvelope
	require.NoError(t, json.Unmarshal([]byte(receive(t, sub).Payload), &env))
	assert.Equal(t, msg.ID.String(), env.ID)
	assert.Equal(t, "receipt", env.AggregateType)
	assert.JSONEq(t, `{"totalPrice":"150"}`, string(env.Payload))
}

func TestPublisher_ClosedConnection(t *testing.T) {
	mr, client := newTestClient(t)
	mr.Close()

	err := NewPublisher(client).Publish(context.Background(), "user_x", map[string]string{"a": "b"})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = NewClient(context.Background(), Options{Addr: mr.Addr()})
	assert.Error(t, err)
}
