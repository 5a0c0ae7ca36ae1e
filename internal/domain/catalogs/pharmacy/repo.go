package pharmacy

import (
	"pharmaledger/internal/domain"
)

// Repository defines the interface for Pharmacy persistence.
type Repository interface {
	domain.CatalogRepository[*Pharmacy]
}
