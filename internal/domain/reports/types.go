// Package reports provides read-only views over pharmacies and medicines.
package reports

import (
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/pharmacy"
)

// --- Pharmacy Statistics ---

// PharmacyStatistics aggregates a pharmacy's non-archived transactions.
type PharmacyStatistics struct {
	PharmacyID        id.ID       `db:"pharmacy_id" json:"pharmacyId"`
	TotalAmount       types.Money `db:"total_amount" json:"totalAmount"`
	TotalTransactions int64       `db:"total_transactions" json:"totalTransactions"`
	// TotalMedicines is the number of pills moved (sum of quantity_pills).
	TotalMedicines int64 `db:"total_medicines" json:"totalMedicines"`
}

// --- Pharmacy Stock ---

// PharmacyStock is how much of one medicine a pharmacy still holds.
type PharmacyStock struct {
	MedicineID   id.ID  `db:"medicine_id" json:"medicineId"`
	MedicineName string `db:"medicine_name" json:"medicineName"`
	Given        int64  `db:"given" json:"given"`
	Sold         int64  `db:"sold" json:"sold"`
	Remaining    int64  `db:"-" json:"remaining"`
}

// PharmacyOverview combines the pharmacy, its balances and its stock.
type PharmacyOverview struct {
	Pharmacy   *pharmacy.Pharmacy `json:"pharmacy"`
	Statistics PharmacyStatistics `json:"statistics"`
	Stock      []PharmacyStock    `json:"stock"`
	PaidAmount types.Money        `json:"paidAmount"`
}

// --- Medicine Balance ---

// MedicineBalanceFilter defines filter for the medicine balance report.
type MedicineBalanceFilter struct {
	Search string

	// Exclude medicines with nothing left
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// MedicineBalance is one row of the medicine balance report.
type MedicineBalance struct {
	MedicineID     id.ID       `json:"medicineId"`
	Name           string      `json:"name"`
	StockQuantity  int64       `json:"stockQuantity"`
	SoldQuantity   int64       `json:"soldQuantity"`
	GivenQuantity  int64       `json:"givenQuantity"`
	Remaining      int64       `json:"remaining"`
	PillPrice      types.Money `json:"pillPrice"`
	RemainingValue types.Money `json:"remainingValue"`
}

// MedicineBalanceReport is the full medicine balance report.
type MedicineBalanceReport struct {
	Items      []MedicineBalance `json:"items"`
	TotalItems int               `json:"totalItems"`

	// Summary
	TotalRemaining int64       `json:"totalRemaining"`
	TotalValue     types.Money `json:"totalValue"`
}
