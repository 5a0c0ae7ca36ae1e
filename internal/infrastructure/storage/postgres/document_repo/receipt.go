package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/documents/receipt"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/internal/infrastructure/storage/postgres/catalog_repo"
)

const receiptTable = "doc_receipts"

// ReceiptRepo implements receipt.Repository. Lines live in a JSONB column.
type ReceiptRepo struct {
	*catalog_repo.BaseCatalogRepo[*receipt.Receipt]
}

var _ receipt.Repository = (*ReceiptRepo)(nil)

// NewReceiptRepo creates a new receipt repository.
func NewReceiptRepo(txm *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		BaseCatalogRepo: catalog_repo.NewBaseCatalogRepo(
			txm, receiptTable, "receipt",
			postgres.ExtractDBColumns[receipt.Receipt](),
			func() *receipt.Receipt { return &receipt.Receipt{} },
		).WithParentColumn("pharmacy_id"),
	}
}

func latestQuery(b squirrel.StatementBuilderType, cols []string, pharmacyID id.ID) squirrel.SelectBuilder {
	return b.Select(cols...).
		From(receiptTable).
		Where(squirrel.Eq{"pharmacy_id": pharmacyID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		Suffix("FOR UPDATE")
}

// LatestForUpdate locks the pharmacy's most recent receipt.
func (r *ReceiptRepo) LatestForUpdate(ctx context.Context, pharmacyID id.ID) (*receipt.Receipt, error) {
	return r.FindOne(ctx, latestQuery(r.Builder(), r.Columns(), pharmacyID), "latest for pharmacy "+pharmacyID.String())
}

// SaveLines writes the line items only; issued totals are left untouched.
func (r *ReceiptRepo) SaveLines(ctx context.Context, rc *receipt.Receipt) error {
	return r.UpdateColumns(ctx, rc, "products")
}

// List returns receipts matching the filter, newest first by default.
func (r *ReceiptRepo) List(ctx context.Context, filter receipt.Filter) (domain.ListResult[*receipt.Receipt], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "-created_at"
	}
	filter.ParentID = filter.PharmacyID
	return r.ListWhere(ctx, filter.ListFilter, nil)
}
