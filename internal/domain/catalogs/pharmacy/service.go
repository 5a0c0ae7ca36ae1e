package pharmacy

import (
	"context"

	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
)

// Service provides CRUD for pharmacies. Debt balances are owned by the
// debt ledger and receipt reconciler.
type Service struct {
	*domain.CatalogService[*Pharmacy]
}

// NewService creates a new Pharmacy service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Pharmacy]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "pharmacy",
	})
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, p *Pharmacy) error {
		p.Touch()
		return nil
	})
	return &Service{CatalogService: base}
}
