// Package pharmacy provides the Pharmacy catalog. A pharmacy carries the
// running receivable for goods handed over through receipts.
package pharmacy

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
)

// Pharmacy is a retail point supplied by the owner.
type Pharmacy struct {
	entity.Owned

	Name    string  `db:"name" json:"name"`
	Address *string `db:"address" json:"address,omitempty"`
	Phone   string  `db:"phone" json:"phone"`
	Manager string  `db:"manager" json:"manager"`

	TotalDebt     types.Money `db:"total_debt" json:"totalDebt"`
	RemainingDebt types.Money `db:"remaining_debt" json:"remainingDebt"`
}

// NewPharmacy creates a Pharmacy with zero balances.
func NewPharmacy(owner id.ID, name string) *Pharmacy {
	return &Pharmacy{
		Owned:         entity.NewOwned(owner),
		Name:          name,
		TotalDebt:     decimal.Zero,
		RemainingDebt: decimal.Zero,
	}
}

// Validate implements entity.Validatable interface.
func (p *Pharmacy) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if len(p.Phone) > 20 {
		return apperror.NewValidation("phone is too long").WithDetail("field", "phone")
	}
	if p.TotalDebt.IsNegative() || p.RemainingDebt.IsNegative() {
		return apperror.NewValidation("debt cannot be negative").WithDetail("field", "remainingDebt")
	}
	return nil
}

// Payment is one append-only debt payment made by a pharmacy.
type Payment struct {
	entity.Owned

	PharmacyID id.ID       `db:"pharmacy_id" json:"pharmacyId"`
	Amount     types.Money `db:"amount" json:"amount"`
}

// NewPayment creates a payment row for the pharmacy.
func NewPayment(owner, pharmacyID id.ID, amount types.Money) *Payment {
	return &Payment{
		Owned:      entity.NewOwned(owner),
		PharmacyID: pharmacyID,
		Amount:     amount,
	}
}
