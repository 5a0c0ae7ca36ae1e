// Package transaction records medicine movements to and from pharmacies and
// keeps the medicine's given and sold counters in step with them.
package transaction

import (
	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/medicine"
)

// Type is the direction of a pharmacy transaction.
type Type string

const (
	TypeGiven    Type = "given"
	TypeSold     Type = "sold"
	TypeReturned Type = "returned"
)

// ParseType validates a transaction type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeGiven, TypeSold, TypeReturned:
		return t, nil
	}
	return "", apperror.NewValidation("unknown transaction type").
		WithDetail("field", "transactionType").
		WithDetail("value", s)
}

// Transaction is an immutable record of medicine moving through a pharmacy.
type Transaction struct {
	entity.Owned

	PharmacyID       id.ID       `db:"pharmacy_id" json:"pharmacyId"`
	MedicineID       id.ID       `db:"medicine_id" json:"medicineId"`
	QuantityPills    int64       `db:"quantity_pills" json:"quantityPills"`
	QuantityPackages int64       `db:"quantity_packages" json:"quantityPackages"`
	Type             Type        `db:"transaction_type" json:"transactionType"`
	PricePerUnit     types.Money `db:"price_per_unit" json:"pricePerUnit"`
	TotalPrice       types.Money `db:"total_price" json:"totalPrice"`
}

// TotalUnits is the quantity applied to the medicine counters.
// It multiplies both quantity fields; see DESIGN.md.
func (t *Transaction) TotalUnits() int64 {
	return t.QuantityPills * t.QuantityPackages
}

// Input is a single transaction request.
type Input struct {
	PharmacyID       id.ID `json:"pharmacyId" validate:"required"`
	MedicineID       id.ID `json:"medicineId" validate:"required"`
	QuantityPills    int64 `json:"quantityPills" validate:"gt=0"`
	QuantityPackages int64 `json:"quantityPackages" validate:"gt=0"`
	Type             Type  `json:"transactionType" validate:"required,oneof=given sold returned"`
}

// BulkItem is one line of a bulk request.
type BulkItem struct {
	MedicineID       id.ID `json:"medicineId" validate:"required"`
	QuantityPills    int64 `json:"quantityPills" validate:"gt=0"`
	QuantityPackages int64 `json:"quantityPackages" validate:"gt=0"`
}

// BulkResult reports what a bulk request created.
type BulkResult struct {
	Created int     `json:"created"`
	IDs     []id.ID `json:"ids"`
}

// Summary aggregates the owner's active transactions.
type Summary struct {
	TotalAmount       types.Money `db:"total_amount" json:"totalAmount"`
	TotalTransactions int64       `db:"total_transactions" json:"totalTransactions"`
	TotalMedicines    int64       `db:"total_medicines" json:"totalMedicines"`
}

// Filter narrows transaction listings.
type Filter struct {
	domain.ListFilter

	PharmacyID *id.ID
	MedicineID *id.ID
	Type       Type
}

// build prices the movement and applies it to the locked medicine.
func build(owner id.ID, m *medicine.Medicine, pharmacyID id.ID, pills, packages int64, typ Type) (*Transaction, error) {
	price, err := m.PillPrice()
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		Owned:            entity.NewOwned(owner),
		PharmacyID:       pharmacyID,
		MedicineID:       m.ID,
		QuantityPills:    pills,
		QuantityPackages: packages,
		Type:             typ,
		PricePerUnit:     price,
	}
	units := t.TotalUnits()
	t.TotalPrice = price.Mul(types.FromInt(units))

	switch typ {
	case TypeGiven:
		m.ApplyGiven(units)
	case TypeSold:
		m.ApplySold(units)
	case TypeReturned:
		m.ApplyReturned(units)
	}
	m.Touch()
	return t, nil
}
