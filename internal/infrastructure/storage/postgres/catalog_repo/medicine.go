package catalog_repo

import (
	"context"

	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/documents/transaction"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const medicineTable = "cat_medicines"

// MedicineRepo implements medicine.Repository and the counters the
// transaction recorder writes.
type MedicineRepo struct {
	*BaseCatalogRepo[*medicine.Medicine]
}

var (
	_ medicine.Repository            = (*MedicineRepo)(nil)
	_ transaction.MedicineRepository = (*MedicineRepo)(nil)
)

// NewMedicineRepo creates a new medicine repository.
func NewMedicineRepo(txm *postgres.TxManager) *MedicineRepo {
	return &MedicineRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, medicineTable, "medicine",
			postgres.ExtractDBColumns[medicine.Medicine](),
			func() *medicine.Medicine { return &medicine.Medicine{} },
			"sold_quantity", "given_quantity",
		),
	}
}

// SaveCounters writes sold_quantity and given_quantity.
func (r *MedicineRepo) SaveCounters(ctx context.Context, m *medicine.Medicine) error {
	return r.UpdateColumns(ctx, m, "sold_quantity", "given_quantity")
}
