package companydebt

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/pkg/logger"
)

// EventCompanyDebtPaid is published after a company payment is allocated.
const EventCompanyDebtPaid = "company.debt_paid"

// Service aggregates and pays debt per company.
type Service struct {
	companies CompanyRepository
	products  ProductRepository
	txManager tx.Manager
	events    domain.EventPublisher
	recorder  domain.OperationRecorder
}

// NewService creates a new company debt service.
func NewService(
	companies CompanyRepository,
	products ProductRepository,
	txManager tx.Manager,
	events domain.EventPublisher,
	recorder domain.OperationRecorder,
) *Service {
	if events == nil {
		events = domain.NopPublisher{}
	}
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	return &Service{
		companies: companies,
		products:  products,
		txManager: txManager,
		events:    events,
		recorder:  recorder,
	}
}

// List returns every active company the owner still owes money to.
func (s *Service) List(ctx context.Context, owner id.ID) ([]CompanyDebt, error) {
	companies, err := s.companies.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	if len(companies) == 0 {
		return []CompanyDebt{}, nil
	}

	names := make([]string, 0, len(companies))
	for _, c := range companies {
		names = append(names, c.Name)
	}
	products, err := s.products.ListDebtors(ctx, owner, names)
	if err != nil {
		return nil, fmt.Errorf("list debtor products: %w", err)
	}

	byManufacturer := make(map[string][]ProductDebt)
	for _, p := range products {
		debt := types.OrZero(p.RemainingDebt)
		if !debt.IsPositive() {
			continue
		}
		name := p.ManufacturerName()
		byManufacturer[name] = append(byManufacturer[name], ProductDebt{
			ProductID:     p.ID,
			Name:          p.Name,
			InitialDebt:   types.OrZero(p.InitialDebt),
			RemainingDebt: debt,
		})
	}

	out := make([]CompanyDebt, 0, len(byManufacturer))
	for _, c := range companies {
		lines := byManufacturer[c.Name]
		total := types.Zero()
		for _, l := range lines {
			total = total.Add(l.RemainingDebt)
		}
		if !total.IsPositive() {
			continue
		}
		out = append(out, CompanyDebt{Company: c, TotalDebt: total, Products: lines})
	}
	return out, nil
}

// Pay spreads amount over the company's indebted products in the given
// order. Any amount beyond the total debt is returned as Unallocated.
func (s *Service) Pay(ctx context.Context, owner, companyID id.ID, amount types.Money, order AllocationOrder) (PaymentResult, error) {
	if !amount.IsPositive() {
		return PaymentResult{}, apperror.NewInvalidAmount(amount.String())
	}
	if order == "" {
		order = OrderOldestFirst
	}

	var result PaymentResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.companies.GetByID(ctx, companyID)
		if err != nil {
			return err
		}

		products, err := s.products.LockDebtors(ctx, owner, c.Name)
		if err != nil {
			return fmt.Errorf("lock debtor products: %w", err)
		}
		order.Sort(products)

		allocations, left := allocate(products, amount)
		for _, p := range products {
			if !containsProduct(allocations, p.ID) {
				continue
			}
			if err := s.products.SaveDebt(ctx, p); err != nil {
				return fmt.Errorf("save product debt: %w", err)
			}
		}

		result = PaymentResult{
			CompanyID:   c.ID,
			CompanyName: c.Name,
			Order:       order,
			TotalPaid:   amount.Sub(left),
			Unallocated: left,
			Allocations: allocations,
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "company",
			AggregateID:   c.ID,
			EventType:     EventCompanyDebtPaid,
			Payload:       result,
		})
	})
	s.recorder.Observe("companydebt.pay", err)
	if err != nil {
		return PaymentResult{}, err
	}

	logger.Info(ctx, "company debt paid",
		"company_id", companyID,
		"paid", result.TotalPaid,
		"unallocated", result.Unallocated,
		"products", len(result.Allocations))
	return result, nil
}

// Summary returns the owner's total supplier debt and how many companies
// it is owed to.
func (s *Service) Summary(ctx context.Context, owner id.ID) (Summary, error) {
	total, err := s.products.TotalRemainingDebt(ctx, owner)
	if err != nil {
		return Summary{}, fmt.Errorf("total remaining debt: %w", err)
	}
	debts, err := s.List(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	return Summary{TotalDebt: total, CompaniesWithDebt: len(debts)}, nil
}

func containsProduct(allocations []Allocation, productID id.ID) bool {
	for _, a := range allocations {
		if a.ProductID == productID {
			return true
		}
	}
	return false
}
