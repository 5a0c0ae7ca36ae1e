// Package product provides the warehouse Product catalog: stock on hand in
// packages and loose pills, purchase and selling prices, and supplier debt.
package product

import (
	"context"
	"strings"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/units"
)

// Product is a stocked item owned by a single user.
type Product struct {
	entity.Owned

	Name        string  `db:"name" json:"name"`
	Dosage      *string `db:"dosage" json:"dosage,omitempty"`
	Composition *string `db:"composition" json:"composition,omitempty"`

	Type            units.ProductType `db:"type" json:"type"`
	StockQuantity   int64             `db:"stock_quantity" json:"stockQuantity"`
	PillsPerPackage int64             `db:"pills_per_package" json:"pillsPerPackage"`
	LoosePills      int64             `db:"loose_pills" json:"loosePills"`
	// TotalStock is derived: stock in atomic pill units.
	TotalStock int64 `db:"total_stock" json:"totalStock"`

	// Manufacturer links the product to a Company by name.
	Manufacturer *string `db:"manufacturer" json:"manufacturer,omitempty"`

	PurchasePrice       types.NullMoney `db:"purchase_price" json:"purchasePrice"`
	SellingPrice        types.NullMoney `db:"selling_price" json:"sellingPrice"`
	TotalPurchaseAmount types.NullMoney `db:"total_purchase_amount" json:"totalPurchaseAmount"`
	TotalSellingAmount  types.NullMoney `db:"total_selling_amount" json:"totalSellingAmount"`

	InitialDebt   types.NullMoney `db:"initial_debt" json:"initialDebt"`
	RemainingDebt types.NullMoney `db:"remaining_debt" json:"remainingDebt"`
}

// NewProduct creates a Product with defaults (one pill per package).
func NewProduct(owner id.ID, name string, productType units.ProductType) *Product {
	return &Product{
		Owned:           entity.NewOwned(owner),
		Name:            name,
		Type:            productType,
		PillsPerPackage: 1,
	}
}

// Stock returns the on-hand state for the conversion engine.
func (p *Product) Stock() units.Stock {
	return units.Stock{
		Type:            p.Type,
		StockQuantity:   p.StockQuantity,
		PillsPerPackage: p.PillsPerPackage,
		LoosePills:      p.LoosePills,
	}
}

// ManufacturerName returns the manufacturer or "".
func (p *Product) ManufacturerName() string {
	if p.Manufacturer == nil {
		return ""
	}
	return *p.Manufacturer
}

// RecalculateStock re-derives TotalStock from the stored counters.
func (p *Product) RecalculateStock() error {
	total, err := units.TotalStock(p.Stock())
	if err != nil {
		return err
	}
	p.TotalStock = total
	return nil
}

// RecalculateAmounts refreshes the purchase and selling totals.
// Totals are price * stock_quantity for both product types.
func (p *Product) RecalculateAmounts() {
	qty := types.FromInt(p.StockQuantity)
	p.TotalPurchaseAmount = types.None()
	if p.PurchasePrice.Valid {
		p.TotalPurchaseAmount = types.Some(p.PurchasePrice.Decimal.Mul(qty))
	}
	p.TotalSellingAmount = types.None()
	if p.SellingPrice.Valid {
		p.TotalSellingAmount = types.Some(p.SellingPrice.Decimal.Mul(qty))
	}
}

// RecordPurchase opens the supplier debt for the purchased quantity:
// initial_debt = purchase_price * stock_quantity and remaining_debt equals it.
// Without a purchase price no debt is tracked.
func (p *Product) RecordPurchase() {
	p.RecalculateAmounts()
	if !p.PurchasePrice.Valid {
		p.InitialDebt = types.None()
		p.RemainingDebt = types.None()
		return
	}
	p.InitialDebt = p.TotalPurchaseAmount
	p.RemainingDebt = p.TotalPurchaseAmount
}

// HasDebt reports whether there is outstanding supplier debt.
func (p *Product) HasDebt() bool {
	return p.RemainingDebt.Valid && p.RemainingDebt.Decimal.IsPositive()
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !p.Type.Valid() {
		return apperror.NewInvalidProductType(string(p.Type))
	}
	if p.PillsPerPackage <= 0 {
		return apperror.NewValidation("pills per package must be positive").
			WithDetail("field", "pillsPerPackage")
	}
	if p.StockQuantity < 0 {
		return apperror.NewValidation("stock quantity cannot be negative").
			WithDetail("field", "stockQuantity")
	}
	if p.LoosePills < 0 {
		return apperror.NewValidation("loose pills cannot be negative").
			WithDetail("field", "loosePills")
	}
	for field, price := range map[string]types.NullMoney{
		"purchasePrice": p.PurchasePrice,
		"sellingPrice":  p.SellingPrice,
	} {
		if price.Valid && price.Decimal.IsNegative() {
			return apperror.NewValidation("price cannot be negative").WithDetail("field", field)
		}
	}
	if p.RemainingDebt.Valid {
		if p.RemainingDebt.Decimal.IsNegative() {
			return apperror.NewValidation("remaining debt cannot be negative").
				WithDetail("field", "remainingDebt")
		}
		if p.InitialDebt.Valid && p.RemainingDebt.Decimal.GreaterThan(p.InitialDebt.Decimal) {
			return apperror.NewValidation("remaining debt cannot exceed initial debt").
				WithDetail("field", "remainingDebt")
		}
	}
	return nil
}
