// Package notes provides personal notes with an optional schedule and
// recurrence. Notes are owner-scoped and soft-deleted like the catalogs.
package notes

import (
	"context"
	"strings"
	"time"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
)

// Recurrence is how often a scheduled note repeats.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// ParseRecurrence parses a wire value. An empty string means no recurrence.
func ParseRecurrence(s string) (*Recurrence, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	r := Recurrence(s)
	if !r.Valid() {
		return nil, apperror.NewValidation("unknown recurrence").
			WithDetail("field", "recurrence").
			WithDetail("value", s)
	}
	return &r, nil
}

// Note is a user's note.
type Note struct {
	entity.Owned

	Title       string      `db:"title" json:"title"`
	Content     string      `db:"content" json:"content"`
	ScheduledAt *time.Time  `db:"scheduled_at" json:"scheduledAt"`
	Recurrence  *Recurrence `db:"recurrence" json:"recurrence"`
}

// NewNote creates a Note for owner.
func NewNote(owner id.ID, title string) *Note {
	return &Note{
		Owned: entity.NewOwned(owner),
		Title: title,
	}
}

// Validate implements entity.Validatable interface.
func (n *Note) Validate(ctx context.Context) error {
	if strings.TrimSpace(n.Title) == "" {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if len(n.Title) > 255 {
		return apperror.NewValidation("title is too long").WithDetail("field", "title")
	}
	if n.Recurrence != nil && !n.Recurrence.Valid() {
		return apperror.NewValidation("unknown recurrence").
			WithDetail("field", "recurrence").
			WithDetail("value", string(*n.Recurrence))
	}
	return nil
}
