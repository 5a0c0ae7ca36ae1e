package product

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate locks the product row for the current transaction.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)
}
