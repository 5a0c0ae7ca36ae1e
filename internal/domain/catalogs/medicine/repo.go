package medicine

import (
	"pharmaledger/internal/domain"
)

// Repository defines the interface for Medicine persistence.
type Repository interface {
	domain.CatalogRepository[*Medicine]
}
