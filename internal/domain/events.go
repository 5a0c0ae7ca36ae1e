package domain

import (
	"context"

	"pharmaledger/internal/core/id"
)

// Event is a ledger change announced to other processes. Publishers write
// it inside the caller's transaction, so it is only delivered if the
// mutation commits.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// EventPublisher persists events for asynchronous relay.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// OperationRecorder receives the outcome of every ledger operation.
type OperationRecorder interface {
	Observe(operation string, err error)
}

// NopRecorder discards observations.
type NopRecorder struct{}

// Observe implements OperationRecorder.
func (NopRecorder) Observe(string, error) {}
