package notification

import (
	"context"
	"time"

	"pharmaledger/internal/core/id"
)

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, notificationID id.ID) (*Notification, error)
	ListByUser(ctx context.Context, userID id.ID, unreadOnly bool, limit, offset int) ([]*Notification, int64, error)
	MarkRead(ctx context.Context, notificationID id.ID) error
	Delete(ctx context.Context, notificationID id.ID) error

	// ListDue returns pending notifications scheduled at or before now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Notification, error)
	MarkCompleted(ctx context.Context, notificationID id.ID) error
}

// Publisher delivers payloads to subscribers of a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
