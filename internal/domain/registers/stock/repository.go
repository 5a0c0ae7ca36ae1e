package stock

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/catalogs/product"
)

// Repository is the persistence the stock ledger needs.
type Repository interface {
	// GetForUpdate loads a product and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)

	// SaveStock writes stock_quantity, loose_pills and total_stock in one update.
	SaveStock(ctx context.Context, p *product.Product) error
}
