package company

import (
	"context"

	"pharmaledger/internal/domain"
)

// Repository defines the interface for Company persistence.
type Repository interface {
	domain.CatalogRepository[*Company]

	// ListActive returns every non-archived company.
	ListActive(ctx context.Context) ([]*Company, error)
}
