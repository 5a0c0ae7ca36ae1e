package transaction

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
)

// Repository persists transactions.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, transactionID id.ID) (*Transaction, error)
	SetArchived(ctx context.Context, transactionID id.ID, archived bool) error
	List(ctx context.Context, filter Filter) (domain.ListResult[*Transaction], error)

	// Summarize aggregates non-archived transactions, optionally for one pharmacy.
	Summarize(ctx context.Context, owner id.ID, pharmacyID *id.ID) (Summary, error)
}

// MedicineRepository is the medicine persistence the recorder needs.
type MedicineRepository interface {
	GetForUpdate(ctx context.Context, medicineID id.ID) (*medicine.Medicine, error)

	// SaveCounters writes sold_quantity and given_quantity.
	SaveCounters(ctx context.Context, m *medicine.Medicine) error
}

// PharmacyRepository resolves the pharmacy a transaction belongs to.
type PharmacyRepository interface {
	GetByID(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error)
}
