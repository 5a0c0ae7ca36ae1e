package notes

import (
	"pharmaledger/internal/domain"
)

// Repository defines the interface for Note persistence.
type Repository interface {
	domain.CatalogRepository[*Note]
}
