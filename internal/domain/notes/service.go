package notes

import (
	"context"

	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
)

// Service provides owner-scoped CRUD for notes.
type Service struct {
	*domain.CatalogService[*Note]
}

// NewService creates a new Note service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Note]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "note",
	})
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, n *Note) error {
		n.Touch()
		return nil
	})
	return &Service{CatalogService: base}
}
