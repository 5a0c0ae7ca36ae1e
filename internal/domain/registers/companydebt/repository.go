package companydebt

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/company"
	"pharmaledger/internal/domain/catalogs/product"
)

// CompanyRepository reads the shared company catalog.
type CompanyRepository interface {
	GetByID(ctx context.Context, companyID id.ID) (*company.Company, error)
	ListActive(ctx context.Context) ([]*company.Company, error)
}

// ProductRepository reads and settles product supplier debt.
type ProductRepository interface {
	// ListDebtors returns the owner's non-archived products made by one of
	// the manufacturers with remaining_debt > 0.
	ListDebtors(ctx context.Context, owner id.ID, manufacturers []string) ([]*product.Product, error)

	// LockDebtors is ListDebtors for one manufacturer with rows locked
	// FOR UPDATE in id order. Callers sort the result into allocation order.
	LockDebtors(ctx context.Context, owner id.ID, manufacturer string) ([]*product.Product, error)

	SaveDebt(ctx context.Context, p *product.Product) error

	// TotalRemainingDebt sums remaining_debt over the owner's active products.
	TotalRemainingDebt(ctx context.Context, owner id.ID) (types.Money, error)
}
