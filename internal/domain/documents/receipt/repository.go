package receipt

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/pharmacy"
)

// Repository persists receipts.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error)
	GetForUpdate(ctx context.Context, receiptID id.ID) (*Receipt, error)

	// LatestForUpdate locks the most recently created receipt of a pharmacy.
	LatestForUpdate(ctx context.Context, pharmacyID id.ID) (*Receipt, error)

	// SaveLines writes the line counts, leaving the issued totals as they are.
	SaveLines(ctx context.Context, r *Receipt) error
	Delete(ctx context.Context, receiptID id.ID) error
	List(ctx context.Context, filter Filter) (domain.ListResult[*Receipt], error)
}

// PharmacyRepository is the pharmacy persistence the reconciler needs.
type PharmacyRepository interface {
	GetForUpdate(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error)
	SaveDebt(ctx context.Context, p *pharmacy.Pharmacy) error
}

// PaymentRepository sums the pharmacy's payment history.
type PaymentRepository interface {
	// SumActivePayments totals non-archived payments of the pharmacy.
	SumActivePayments(ctx context.Context, pharmacyID id.ID) (types.Money, error)
}
