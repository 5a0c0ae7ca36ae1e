package company

import (
	"context"

	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
)

// Service provides CRUD for companies.
//
// Archive and Restore are not owner-scoped: a company record is shared, so
// archiving it hides it for every owner. Callers gate these behind the
// security.CapArchiveCompanies capability.
type Service struct {
	*domain.CatalogService[*Company]
}

// NewService creates a new Company service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "company",
		Shared:     true,
	})
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, c *Company) error {
		c.Touch()
		return nil
	})
	return &Service{CatalogService: base}
}
