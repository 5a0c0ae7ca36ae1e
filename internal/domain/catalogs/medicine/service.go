package medicine

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
)

// Service provides CRUD for medicines. The given/sold counters are moved
// only by the transaction recorder.
type Service struct {
	*domain.CatalogService[*Medicine]
}

// NewService creates a new Medicine service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Medicine]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "medicine",
	})
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, m *Medicine) error {
		m.Touch()
		return nil
	})
	return &Service{CatalogService: base}
}

// Valuation is the derived stock position of a medicine.
type Valuation struct {
	PillPrice         string `json:"pillPrice"`
	PackagePrice      string `json:"packagePrice"`
	RemainingQuantity int64  `json:"remainingQuantity"`
	RemainingValue    string `json:"remainingValue"`
}

// Valuate returns the derived prices and remaining stock value.
func (s *Service) Valuate(ctx context.Context, owner, medicineID id.ID) (Valuation, error) {
	m, err := s.Get(ctx, owner, medicineID)
	if err != nil {
		return Valuation{}, err
	}
	pill, err := m.PillPrice()
	if err != nil {
		return Valuation{}, err
	}
	pkg, err := m.PackagePrice()
	if err != nil {
		return Valuation{}, err
	}
	value, err := m.RemainingValue()
	if err != nil {
		return Valuation{}, err
	}
	return Valuation{
		PillPrice:         pill.StringFixed(2),
		PackagePrice:      pkg.StringFixed(2),
		RemainingQuantity: m.RemainingQuantity(),
		RemainingValue:    value.StringFixed(2),
	}, nil
}
