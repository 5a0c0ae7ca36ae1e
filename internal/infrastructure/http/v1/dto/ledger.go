package dto

import (
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/documents/receipt"
	"pharmaledger/internal/domain/documents/transaction"
)

// StockMovementRequest adds or removes product stock, in the product's
// counting unit.
type StockMovementRequest struct {
	Count int64 `json:"count"`
}

// PaymentRequest pays down a debt. Amount validity is a ledger rule, so
// only presence is checked here.
type PaymentRequest struct {
	Amount types.Money `json:"amount"`
}

// CompanyPaymentRequest pays a company's product debts.
type CompanyPaymentRequest struct {
	Amount types.Money `json:"amount"`
	Order  string      `json:"order"`
}

// DebtRecordRequest opens a per-product debt record.
type DebtRecordRequest struct {
	ProductID id.ID       `json:"productId" binding:"required"`
	Amount    types.Money `json:"amount"`
}

// ReceiptRequest records goods handed to a pharmacy.
type ReceiptRequest struct {
	PharmacyID id.ID              `json:"pharmacyId" binding:"required"`
	Lines      []receipt.LineItem `json:"lines" binding:"required,min=1"`
}

// SellRequest reports items sold from a pharmacy's latest receipt.
type SellRequest struct {
	PharmacyID id.ID              `json:"pharmacyId" binding:"required"`
	Products   []receipt.SellItem `json:"products" binding:"required,min=1"`
}

// ReceiptListQuery filters receipts.
type ReceiptListQuery struct {
	ListQuery
	PharmacyID string `form:"pharmacyId"`
}

// ToFilter converts the query to a receipt filter.
func (q ReceiptListQuery) ToFilter() (receipt.Filter, error) {
	pharmacyID, err := ParseOptionalID("pharmacyId", q.PharmacyID)
	if err != nil {
		return receipt.Filter{}, err
	}
	return receipt.Filter{ListFilter: q.ListQuery.ToFilter(), PharmacyID: pharmacyID}, nil
}

// BulkTransactionRequest records many movements to one pharmacy.
type BulkTransactionRequest struct {
	PharmacyID id.ID                  `json:"pharmacyId" binding:"required"`
	Items      []transaction.BulkItem `json:"items" binding:"required,min=1"`
}

// TransactionListQuery filters transactions.
type TransactionListQuery struct {
	ListQuery
	PharmacyID string `form:"pharmacyId"`
	MedicineID string `form:"medicineId"`
	Type       string `form:"transactionType"`
}

// ToFilter converts the query to a transaction filter.
func (q TransactionListQuery) ToFilter() (transaction.Filter, error) {
	f := transaction.Filter{ListFilter: q.ListQuery.ToFilter()}
	var err error
	if f.PharmacyID, err = ParseOptionalID("pharmacyId", q.PharmacyID); err != nil {
		return f, err
	}
	if f.MedicineID, err = ParseOptionalID("medicineId", q.MedicineID); err != nil {
		return f, err
	}
	if q.Type != "" {
		if f.Type, err = transaction.ParseType(q.Type); err != nil {
			return f, err
		}
	}
	return f, nil
}

// MedicineBalanceQuery filters the medicine balance report.
type MedicineBalanceQuery struct {
	Search      string `form:"search"`
	ExcludeZero bool   `form:"excludeZero"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset      int    `form:"offset" binding:"omitempty,min=0"`
}
