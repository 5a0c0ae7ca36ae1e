package debt

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/catalogs/product"
)

// ProductRepository is the product persistence the debt ledger needs.
type ProductRepository interface {
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)

	// SaveDebt writes initial_debt and remaining_debt.
	SaveDebt(ctx context.Context, p *product.Product) error
}

// PharmacyRepository is the pharmacy persistence the debt ledger needs.
type PharmacyRepository interface {
	GetByID(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error)
	GetForUpdate(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error)

	// SaveDebt writes total_debt and remaining_debt.
	SaveDebt(ctx context.Context, p *pharmacy.Pharmacy) error
}

// PaymentRepository stores the append-only pharmacy payment history.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p *pharmacy.Payment) error
	ListPayments(ctx context.Context, pharmacyID id.ID) ([]*pharmacy.Payment, error)
}

// RecordRepository stores standalone debt records.
type RecordRepository interface {
	CreateRecord(ctx context.Context, r *Record) error
	GetRecordForUpdate(ctx context.Context, recordID id.ID) (*Record, error)
	SaveRecord(ctx context.Context, r *Record) error
	ListRecords(ctx context.Context, owner id.ID, productID *id.ID) ([]*Record, error)
}
