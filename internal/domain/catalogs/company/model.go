// Package company provides the Company (manufacturer) catalog. Companies are
// shared by all owners; products reference them by manufacturer name.
package company

import (
	"context"
	"strings"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
)

// Company is a supplier/manufacturer.
type Company struct {
	entity.BaseEntity

	Name      string  `db:"name" json:"name"`
	OwnerName *string `db:"owner_name" json:"ownerName,omitempty"`
	Phone     *string `db:"phone" json:"phone,omitempty"`
	Address   *string `db:"address" json:"address,omitempty"`
	Archived  bool    `db:"archived" json:"archived"`
}

// NewCompany creates a Company.
func NewCompany(name string) *Company {
	return &Company{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
	}
}

// BelongsTo is always true: companies are not owner-scoped.
func (c *Company) BelongsTo(id.ID) bool { return true }

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if len(c.Name) > 255 {
		return apperror.NewValidation("name is too long").WithDetail("field", "name")
	}
	if c.Phone != nil && len(*c.Phone) > 32 {
		return apperror.NewValidation("phone is too long").WithDetail("field", "phone")
	}
	if c.Address != nil && len(*c.Address) > 512 {
		return apperror.NewValidation("address is too long").WithDetail("field", "address")
	}
	return nil
}
