package reports

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
)

// Repository defines report data access interface.
type Repository interface {
	PharmacyStatistics(ctx context.Context, owner, pharmacyID id.ID) (PharmacyStatistics, error)

	// PharmacyStock sums given and sold pills per medicine for the pharmacy,
	// optionally for a single medicine.
	PharmacyStock(ctx context.Context, owner, pharmacyID id.ID, medicineID *id.ID) ([]PharmacyStock, error)
}

// PharmacyReader resolves pharmacies.
type PharmacyReader interface {
	GetByID(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error)
}

// MedicineLister lists medicines.
type MedicineLister interface {
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*medicine.Medicine], error)
}

// PaymentSummer sums a pharmacy's payments.
type PaymentSummer interface {
	SumActivePayments(ctx context.Context, pharmacyID id.ID) (types.Money, error)
}
