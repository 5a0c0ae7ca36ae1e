// Package hospital provides the Hospital (polyclinic) catalog and the doctors
// attached to each hospital.
package hospital

import (
	"context"
	"strings"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/validation"
)

// Hospital is a polyclinic that employs doctors.
type Hospital struct {
	entity.Owned

	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address"`
	Manager string `db:"manager" json:"manager"`
}

// NewHospital creates a Hospital.
func NewHospital(owner id.ID, name string) *Hospital {
	return &Hospital{
		Owned: entity.NewOwned(owner),
		Name:  name,
	}
}

// Validate implements entity.Validatable interface.
func (h *Hospital) Validate(ctx context.Context) error {
	if strings.TrimSpace(h.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// DoctorProduct is a product a doctor prescribes, with the agreed quantity.
type DoctorProduct struct {
	ProductID id.ID  `json:"productId" validate:"required"`
	Name      string `json:"name" validate:"max=255"`
	Quantity  int64  `json:"quantity" validate:"gte=0"`
}

// Doctor works at a hospital and is linked to products and pharmacies.
type Doctor struct {
	entity.Owned

	HospitalID id.ID           `db:"hospital_id" json:"hospitalId"`
	Name       string          `db:"name" json:"name"`
	Specialty  string          `db:"specialty" json:"specialty"`
	Phone      string          `db:"phone" json:"phone"`
	IsActive   bool            `db:"is_active" json:"isActive"`
	Products   []DoctorProduct `db:"products" json:"products"`
	Pharmacies []id.ID         `db:"pharmacies" json:"pharmacies"`
}

// NewDoctor creates an active Doctor at the hospital.
func NewDoctor(owner, hospitalID id.ID, name string) *Doctor {
	return &Doctor{
		Owned:      entity.NewOwned(owner),
		HospitalID: hospitalID,
		Name:       name,
		IsActive:   true,
		Products:   []DoctorProduct{},
		Pharmacies: []id.ID{},
	}
}

// Validate implements entity.Validatable interface.
func (d *Doctor) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if id.IsNil(d.HospitalID) {
		return apperror.NewValidation("hospital is required").WithDetail("field", "hospitalId")
	}
	return validation.Items(d.Products)
}
