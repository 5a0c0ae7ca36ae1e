package messaging

import (
	"context"
	"time"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
)

// Repository persists messages.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, messageID id.ID) (*Message, error)
	GetForUpdate(ctx context.Context, messageID id.ID) (*Message, error)
	Update(ctx context.Context, m *Message) error
	Delete(ctx context.Context, messageID id.ID) error

	// List returns messages; a nil OwnerID lists across owners.
	List(ctx context.Context, filter Filter) (domain.ListResult[*Message], error)

	// PromoteDue moves waiting messages with send_time <= now to sending,
	// optionally for one owner, and returns how many changed.
	PromoteDue(ctx context.Context, owner *id.ID, now time.Time) (int64, error)
}
