// Package notification stores per-user notifications and hands due ones to a
// publisher for real-time delivery.
package notification

import (
	"fmt"
	"time"

	"pharmaledger/internal/core/id"
)

// Notification is a user-facing note, optionally scheduled for later delivery.
type Notification struct {
	ID            id.ID      `db:"id" json:"id"`
	UserID        id.ID      `db:"user_id" json:"userId"`
	Title         string     `db:"title" json:"title"`
	Message       string     `db:"message" json:"message"`
	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduledTime,omitempty"`
	IsCompleted   bool       `db:"is_completed" json:"isCompleted"`
	Read          bool       `db:"read" json:"read"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// Input is the create payload.
type Input struct {
	Title         string     `json:"title" validate:"required,max=255"`
	Message       string     `json:"message" validate:"required"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}

// NewNotification builds a pending notification for the user.
func NewNotification(userID id.ID, in Input, now time.Time) *Notification {
	return &Notification{
		ID:            id.New(),
		UserID:        userID,
		Title:         in.Title,
		Message:       in.Message,
		ScheduledTime: in.ScheduledTime,
		CreatedAt:     now,
	}
}

// Due reports whether the notification should be delivered at now.
func (n *Notification) Due(now time.Time) bool {
	if n.IsCompleted || n.Read || n.ScheduledTime == nil {
		return false
	}
	return !n.ScheduledTime.After(now)
}

// Topic is the broker channel the user's clients subscribe to.
func Topic(userID id.ID) string {
	return fmt.Sprintf("user_%s", userID)
}

// Payload is what subscribers receive.
type Payload struct {
	ID        id.ID     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n *Notification) payload() Payload {
	return Payload{ID: n.ID, Title: n.Title, Message: n.Message, CreatedAt: n.CreatedAt}
}

// DispatchResult counts the outcome of a sweep.
type DispatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
