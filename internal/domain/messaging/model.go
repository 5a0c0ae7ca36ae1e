// Package messaging schedules SMS messages that an owner's Android gateway
// device picks up and sends.
package messaging

import (
	"time"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
)

// Status is the delivery state of a message.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusWaiting, StatusSending, StatusSent:
		return st, nil
	}
	return "", apperror.NewValidation("unknown message status").
		WithDetail("field", "status").
		WithDetail("value", s)
}

// RepeatInterval is the delay before a daily message is sent again.
const RepeatInterval = 24 * time.Hour

// Message is an SMS scheduled for a recipient.
type Message struct {
	entity.BaseEntity

	OwnerID       id.ID     `db:"owner_id" json:"ownerId"`
	RecipientID   string    `db:"recipient_id" json:"recipientId"`
	RecipientName string    `db:"recipient_name" json:"recipientName"`
	PhoneNumber   string    `db:"phone_number" json:"phoneNumber"`
	Body          string    `db:"body" json:"body"`
	SendTime      time.Time `db:"send_time" json:"sendTime"`
	Status        Status    `db:"status" json:"status"`
	DailyRepeat   bool      `db:"daily_repeat" json:"dailyRepeat"`
}

// Input carries the editable fields of a message.
type Input struct {
	RecipientID   string    `json:"recipientId" validate:"required,max=200"`
	RecipientName string    `json:"recipientName" validate:"required,max=50"`
	PhoneNumber   string    `json:"phoneNumber" validate:"required,max=13"`
	Body          string    `json:"body" validate:"required"`
	SendTime      time.Time `json:"sendTime" validate:"required"`
	DailyRepeat   bool      `json:"dailyRepeat"`
}

// NewMessage creates a message. It starts as sending when already due.
func NewMessage(owner id.ID, in Input, now time.Time) *Message {
	m := &Message{
		BaseEntity: entity.NewBaseEntity(),
		OwnerID:    owner,
		Status:     StatusWaiting,
	}
	m.apply(in)
	m.Promote(now)
	return m
}

func (m *Message) apply(in Input) {
	m.RecipientID = in.RecipientID
	m.RecipientName = in.RecipientName
	m.PhoneNumber = in.PhoneNumber
	m.Body = in.Body
	m.SendTime = in.SendTime
	m.DailyRepeat = in.DailyRepeat
}

// BelongsTo reports whether the message is owned by owner.
func (m *Message) BelongsTo(owner id.ID) bool {
	return m.OwnerID == owner
}

// Promote moves a due waiting message to sending.
func (m *Message) Promote(now time.Time) bool {
	if m.Status != StatusWaiting || m.SendTime.After(now) {
		return false
	}
	m.Status = StatusSending
	m.Touch()
	return true
}

// Edit replaces the editable fields. Sent messages are immutable.
func (m *Message) Edit(in Input, now time.Time) error {
	if m.Status == StatusSent {
		return errImmutable(m.ID)
	}
	m.apply(in)
	if m.Status == StatusSending && m.SendTime.After(now) {
		m.Status = StatusWaiting
	}
	m.Promote(now)
	m.Touch()
	return nil
}

// Transition changes the status. Only a sending message may become sent,
// and a sent message never changes again.
func (m *Message) Transition(to Status) error {
	if m.Status == StatusSent {
		return errImmutable(m.ID)
	}
	if to == StatusSent && m.Status != StatusSending {
		return apperror.NewBusinessRule("INVALID_STATUS_TRANSITION", "only a sending message can be marked sent").
			WithDetail("from", string(m.Status)).
			WithDetail("to", string(to))
	}
	m.Status = to
	m.Touch()
	return nil
}

// NextRepeat is the waiting copy scheduled one interval after this message.
func (m *Message) NextRepeat() *Message {
	next := *m
	next.BaseEntity = entity.NewBaseEntity()
	next.SendTime = m.SendTime.Add(RepeatInterval)
	next.Status = StatusWaiting
	return &next
}

func errImmutable(messageID id.ID) error {
	return apperror.NewBusinessRule("MESSAGE_ALREADY_SENT", "a sent message cannot be changed").
		WithDetail("id", messageID.String())
}

// Filter narrows message listings.
type Filter struct {
	domain.ListFilter

	RecipientID string
	Status      Status
}
