package hospital

import (
	"pharmaledger/internal/domain"
)

// Repository defines the interface for Hospital persistence.
type Repository interface {
	domain.CatalogRepository[*Hospital]
}

// DoctorRepository defines the interface for Doctor persistence.
// List narrows to one hospital through ListFilter.ParentID.
type DoctorRepository interface {
	domain.CatalogRepository[*Doctor]
}
