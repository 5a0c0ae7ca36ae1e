package product

import (
	"context"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
)

// Service provides business logic for the Product catalog.
// Stock and debt are never written here after creation; the stock and debt
// ledgers own those columns.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Product service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "product",
	})

	svc := &Service{CatalogService: base, repo: repo, txManager: txm}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)
	return svc
}

// Update replaces the editable fields of a product. The row is locked first
// and the on-hand counters are taken from it, so a concurrent stock movement
// is never overwritten by a stale request body.
func (s *Service) Update(ctx context.Context, owner id.ID, p *Product) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, p.ID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", p.ID.String())
			}
			return err
		}
		if !current.BelongsTo(owner) {
			return apperror.NewNotFound("product", p.ID.String())
		}
		p.StockQuantity = current.StockQuantity
		p.LoosePills = current.LoosePills
		p.InitialDebt = current.InitialDebt
		p.RemainingDebt = current.RemainingDebt
		return s.CatalogService.Update(ctx, owner, p)
	})
}

func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if err := p.RecalculateStock(); err != nil {
		return err
	}
	p.RecordPurchase()
	return nil
}

func (s *Service) prepareForUpdate(ctx context.Context, p *Product) error {
	if err := p.RecalculateStock(); err != nil {
		return err
	}
	p.RecalculateAmounts()
	p.Touch()
	return nil
}
