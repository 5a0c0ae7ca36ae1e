package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/pharmacy"
)

// Service provides report generation operations.
type Service struct {
	repo       Repository
	pharmacies PharmacyReader
	medicines  MedicineLister
	payments   PaymentSummer
}

// NewService creates a new reports service.
func NewService(repo Repository, pharmacies PharmacyReader, medicines MedicineLister, payments PaymentSummer) *Service {
	return &Service{
		repo:       repo,
		pharmacies: pharmacies,
		medicines:  medicines,
		payments:   payments,
	}
}

// PharmacyStatistics returns transaction totals of an owned pharmacy.
func (s *Service) PharmacyStatistics(ctx context.Context, owner, pharmacyID id.ID) (PharmacyStatistics, error) {
	if _, err := s.ownedPharmacy(ctx, owner, pharmacyID); err != nil {
		return PharmacyStatistics{}, err
	}
	stats, err := s.repo.PharmacyStatistics(ctx, owner, pharmacyID)
	if err != nil {
		return PharmacyStatistics{}, fmt.Errorf("get pharmacy statistics: %w", err)
	}
	return stats, nil
}

// PharmacyRemaining returns given minus sold pills per medicine, never
// negative. A nil medicineID reports every medicine.
func (s *Service) PharmacyRemaining(ctx context.Context, owner, pharmacyID id.ID, medicineID *id.ID) ([]PharmacyStock, error) {
	if _, err := s.ownedPharmacy(ctx, owner, pharmacyID); err != nil {
		return nil, err
	}
	return s.pharmacyStock(ctx, owner, pharmacyID, medicineID)
}

// PharmacyOverview loads the pharmacy, its statistics, stock and paid amount
// in parallel.
func (s *Service) PharmacyOverview(ctx context.Context, owner, pharmacyID id.ID) (*PharmacyOverview, error) {
	ph, err := s.ownedPharmacy(ctx, owner, pharmacyID)
	if err != nil {
		return nil, err
	}

	out := &PharmacyOverview{Pharmacy: ph}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.repo.PharmacyStatistics(gctx, owner, pharmacyID)
		if err != nil {
			return fmt.Errorf("get pharmacy statistics: %w", err)
		}
		out.Statistics = stats
		return nil
	})
	g.Go(func() error {
		stock, err := s.pharmacyStock(gctx, owner, pharmacyID, nil)
		out.Stock = stock
		return err
	})
	g.Go(func() error {
		paid, err := s.payments.SumActivePayments(gctx, pharmacyID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}
		out.PaidAmount = paid
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MedicineBalance values the remaining quantity of every owned medicine.
func (s *Service) MedicineBalance(ctx context.Context, owner id.ID, filter MedicineBalanceFilter) (*MedicineBalanceReport, error) {
	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	list, err := s.medicines.List(ctx, domain.ListFilter{
		OwnerID: &owner,
		Search:  filter.Search,
		OrderBy: "name",
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}

	report := &MedicineBalanceReport{
		Items:      make([]MedicineBalance, 0, len(list.Items)),
		TotalValue: types.Zero(),
	}
	for _, m := range list.Items {
		remaining := m.RemainingQuantity()
		if filter.ExcludeZero && remaining == 0 {
			continue
		}
		price, err := m.PillPrice()
		if err != nil {
			return nil, err
		}
		value := price.Mul(types.FromInt(remaining))

		report.Items = append(report.Items, MedicineBalance{
			MedicineID:     m.ID,
			Name:           m.Name,
			StockQuantity:  m.StockQuantity,
			SoldQuantity:   m.SoldQuantity,
			GivenQuantity:  m.GivenQuantity,
			Remaining:      remaining,
			PillPrice:      price,
			RemainingValue: value,
		})
		report.TotalRemaining += remaining
		report.TotalValue = report.TotalValue.Add(value)
	}
	report.TotalItems = len(report.Items)
	return report, nil
}

func (s *Service) pharmacyStock(ctx context.Context, owner, pharmacyID id.ID, medicineID *id.ID) ([]PharmacyStock, error) {
	rows, err := s.repo.PharmacyStock(ctx, owner, pharmacyID, medicineID)
	if err != nil {
		return nil, fmt.Errorf("get pharmacy stock: %w", err)
	}
	for i := range rows {
		rows[i].Remaining = max(0, rows[i].Given-rows[i].Sold)
	}
	return rows, nil
}

func (s *Service) ownedPharmacy(ctx context.Context, owner, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	ph, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if !ph.BelongsTo(owner) {
		return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return ph, nil
}
