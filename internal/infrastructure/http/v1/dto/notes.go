package dto

import (
	"time"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/notes"
)

// NoteRequest creates or replaces a note. An empty recurrence clears it.
type NoteRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Content     string     `json:"content"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Recurrence  string     `json:"recurrence"`
}

// ToNote builds a new note for owner.
func (r NoteRequest) ToNote(owner id.ID) (*notes.Note, error) {
	n := notes.NewNote(owner, r.Title)
	return n, r.ApplyTo(n)
}

// ApplyTo copies the request onto an existing note.
func (r NoteRequest) ApplyTo(n *notes.Note) error {
	recurrence, err := notes.ParseRecurrence(r.Recurrence)
	if err != nil {
		return err
	}
	n.Title = r.Title
	n.Content = r.Content
	n.ScheduledAt = r.ScheduledAt
	n.Recurrence = recurrence
	return nil
}
