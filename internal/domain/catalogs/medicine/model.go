// Package medicine provides the Medicine catalog used for pharmacy
// transactions: quoted prices and running given/sold counters.
package medicine

import (
	"context"
	"strings"
	"time"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/units"
)

// Medicine is a priced item handed to pharmacies.
type Medicine struct {
	entity.Owned

	Name            string          `db:"name" json:"name"`
	Dosage          *string         `db:"dosage" json:"dosage,omitempty"`
	PillsPerPackage int64           `db:"pills_per_package" json:"pillsPerPackage"`
	PricePerPackage types.NullMoney `db:"price_per_package" json:"pricePerPackage"`
	PricePerPill    types.NullMoney `db:"price_per_pill" json:"pricePerPill"`
	PriceType       units.PriceType `db:"price_type" json:"priceType"`
	Manufacturer    *string         `db:"manufacturer" json:"manufacturer,omitempty"`
	ExpiryDate      *time.Time      `db:"expiry_date" json:"expiryDate,omitempty"`

	StockQuantity int64 `db:"stock_quantity" json:"stockQuantity"`
	SoldQuantity  int64 `db:"sold_quantity" json:"soldQuantity"`
	GivenQuantity int64 `db:"given_quantity" json:"givenQuantity"`
}

// NewMedicine creates a Medicine quoted per package.
func NewMedicine(owner id.ID, name string, pillsPerPackage int64) *Medicine {
	return &Medicine{
		Owned:           entity.NewOwned(owner),
		Name:            name,
		PillsPerPackage: pillsPerPackage,
		PriceType:       units.PricePerPackage,
	}
}

// Prices returns the quote for the conversion engine.
func (m *Medicine) Prices() units.Prices {
	return units.Prices{
		Type:            m.PriceType,
		PerPill:         m.PricePerPill,
		PerPackage:      m.PricePerPackage,
		PillsPerPackage: m.PillsPerPackage,
	}
}

// PillPrice is the derived price of one pill.
func (m *Medicine) PillPrice() (types.Money, error) {
	return units.PillPrice(m.Prices())
}

// PackagePrice is the derived price of one package.
func (m *Medicine) PackagePrice() (types.Money, error) {
	return units.PackagePrice(m.Prices())
}

// RemainingQuantity is stock not yet sold or given, never negative.
func (m *Medicine) RemainingQuantity() int64 {
	return max(0, m.StockQuantity-m.SoldQuantity-m.GivenQuantity)
}

// RemainingValue is RemainingQuantity valued at the pill price.
func (m *Medicine) RemainingValue() (types.Money, error) {
	price, err := m.PillPrice()
	if err != nil {
		return types.Zero(), err
	}
	return price.Mul(types.FromInt(m.RemainingQuantity())), nil
}

// ApplyGiven records units handed to a pharmacy.
func (m *Medicine) ApplyGiven(n int64) { m.GivenQuantity += n }

// ApplySold records units sold.
func (m *Medicine) ApplySold(n int64) { m.SoldQuantity += n }

// ApplyReturned takes returned units off the sold counter, never below zero.
func (m *Medicine) ApplyReturned(n int64) {
	m.SoldQuantity = max(0, m.SoldQuantity-n)
}

// Validate implements entity.Validatable interface.
func (m *Medicine) Validate(ctx context.Context) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if m.PillsPerPackage <= 0 {
		return apperror.NewValidation("pills per package must be positive").
			WithDetail("field", "pillsPerPackage")
	}
	if _, err := units.ParsePriceType(string(m.PriceType)); err != nil {
		return err
	}
	if m.StockQuantity < 0 || m.SoldQuantity < 0 || m.GivenQuantity < 0 {
		return apperror.NewValidation("quantities cannot be negative").
			WithDetail("field", "stockQuantity")
	}
	for field, price := range map[string]types.NullMoney{
		"pricePerPackage": m.PricePerPackage,
		"pricePerPill":    m.PricePerPill,
	} {
		if price.Valid && price.Decimal.IsNegative() {
			return apperror.NewValidation("price cannot be negative").WithDetail("field", field)
		}
	}
	return nil
}
