// Package entity holds the fields shared by every persisted ledger record.
package entity

import (
	"context"
	"time"

	"pharmaledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all entities.
type BaseEntity struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// GetID returns the primary key.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// Owned is embedded by records that belong to a single user and are
// soft-deleted through the archived flag.
type Owned struct {
	BaseEntity
	OwnerID  id.ID `db:"owner_id" json:"ownerId"`
	Archived bool  `db:"archived" json:"archived"`
}

// NewOwned creates an Owned base for the given owner.
func NewOwned(owner id.ID) Owned {
	return Owned{
		BaseEntity: NewBaseEntity(),
		OwnerID:    owner,
	}
}

// BelongsTo reports whether the record is owned by owner.
func (o *Owned) BelongsTo(owner id.ID) bool {
	return o.OwnerID == owner
}

// Archive marks the record as soft-deleted.
func (o *Owned) Archive() {
	o.Archived = true
	o.Touch()
}

// Restore clears the archived flag.
func (o *Owned) Restore() {
	o.Archived = false
	o.Touch()
}
