package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/product"
	"pharmaledger/internal/domain/registers/companydebt"
	"pharmaledger/internal/domain/registers/debt"
	"pharmaledger/internal/domain/registers/stock"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository and the product-facing
// interfaces of the stock, debt and company debt ledgers.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var (
	_ product.Repository            = (*ProductRepo)(nil)
	_ stock.Repository              = (*ProductRepo)(nil)
	_ debt.ProductRepository        = (*ProductRepo)(nil)
	_ companydebt.ProductRepository = (*ProductRepo)(nil)
)

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, productTable, "product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
			"initial_debt", "remaining_debt",
			"stock_quantity", "loose_pills",
		),
	}
}

// SaveStock writes the stock columns.
func (r *ProductRepo) SaveStock(ctx context.Context, p *product.Product) error {
	return r.UpdateColumns(ctx, p,
		"stock_quantity", "loose_pills", "total_stock",
		"total_purchase_amount", "total_selling_amount")
}

// SaveDebt writes the debt columns.
func (r *ProductRepo) SaveDebt(ctx context.Context, p *product.Product) error {
	return r.UpdateColumns(ctx, p, "initial_debt", "remaining_debt")
}

func (r *ProductRepo) debtorsQuery(owner id.ID, manufacturers []string) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"owner_id": owner}).
		Where(squirrel.Eq{"archived": false}).
		Where(squirrel.Eq{"manufacturer": manufacturers}).
		Where(squirrel.Gt{"remaining_debt": 0})
}

// ListDebtors returns products of the manufacturers with outstanding debt.
func (r *ProductRepo) ListDebtors(ctx context.Context, owner id.ID, manufacturers []string) ([]*product.Product, error) {
	if len(manufacturers) == 0 {
		return nil, nil
	}
	return r.FindMany(ctx, r.debtorsQuery(owner, manufacturers).OrderBy("created_at", "id"))
}

func (r *ProductRepo) lockDebtorsQuery(owner id.ID, manufacturer string) squirrel.SelectBuilder {
	return r.debtorsQuery(owner, []string{manufacturer}).
		OrderBy("id").
		Suffix("FOR UPDATE")
}

// LockDebtors locks the manufacturer's debtor rows. Rows are locked in id
// order so concurrent payers cannot deadlock; the caller sorts them into
// allocation order afterwards.
func (r *ProductRepo) LockDebtors(ctx context.Context, owner id.ID, manufacturer string) ([]*product.Product, error) {
	items, err := r.FindMany(ctx, r.lockDebtorsQuery(owner, manufacturer))
	if err != nil {
		return nil, fmt.Errorf("lock debtors of %s: %w", manufacturer, err)
	}
	return items, nil
}

// TotalRemainingDebt sums remaining_debt over the owner's active products.
func (r *ProductRepo) TotalRemainingDebt(ctx context.Context, owner id.ID) (types.Money, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(SUM(remaining_debt), 0)").
		From(productTable).
		Where(squirrel.Eq{"owner_id": owner}).
		Where(squirrel.Eq{"archived": false}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum product debt: %w", err)
	}
	return total, nil
}
