// Package debt is the debt ledger: product supplier debt, pharmacy
// receivables with their append-only payment history, and standalone debt
// records. Every payment is 0 < amount <= remaining.
package debt

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/pkg/logger"
)

// Event types published by the debt ledger.
const (
	EventPharmacyDebtPaid = "pharmacy.debt_paid"
	EventProductDebtPaid  = "product.debt_paid"
)

// Deps groups the collaborators of Service.
type Deps struct {
	Products   ProductRepository
	Pharmacies PharmacyRepository
	Payments   PaymentRepository
	Records    RecordRepository
	TxManager  tx.Manager
	Events     domain.EventPublisher
	Recorder   domain.OperationRecorder
}

// Service applies debt payments.
type Service struct {
	products   ProductRepository
	pharmacies PharmacyRepository
	payments   PaymentRepository
	records    RecordRepository
	txManager  tx.Manager
	events     domain.EventPublisher
	recorder   domain.OperationRecorder
}

// NewService creates a new debt ledger service.
func NewService(d Deps) *Service {
	s := &Service{
		products:   d.Products,
		pharmacies: d.Pharmacies,
		payments:   d.Payments,
		records:    d.Records,
		txManager:  d.TxManager,
		events:     d.Events,
		recorder:   d.Recorder,
	}
	if s.events == nil {
		s.events = domain.NopPublisher{}
	}
	if s.recorder == nil {
		s.recorder = domain.NopRecorder{}
	}
	return s
}

// PayProductDebt pays down a product's supplier debt.
func (s *Service) PayProductDebt(ctx context.Context, owner, productID id.ID, amount types.Money) (ProductPayment, error) {
	var out ProductPayment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if !p.BelongsTo(owner) || p.Archived {
			return apperror.NewNotFound("product", productID.String())
		}

		if err := CheckPayment(amount, types.OrZero(p.RemainingDebt)); err != nil {
			return err
		}

		p.RemainingDebt = types.Some(p.RemainingDebt.Decimal.Sub(amount))
		p.Touch()
		if err := s.products.SaveDebt(ctx, p); err != nil {
			return fmt.Errorf("save product debt: %w", err)
		}

		initial := types.OrZero(p.InitialDebt)
		out = ProductPayment{
			ProductID:     p.ID,
			Amount:        amount,
			InitialDebt:   initial,
			RemainingDebt: p.RemainingDebt.Decimal,
			Message:       confirmation(initial, p.RemainingDebt.Decimal),
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "product",
			AggregateID:   p.ID,
			EventType:     EventProductDebtPaid,
			Payload:       out,
		})
	})
	s.recorder.Observe("debt.pay_product", err)
	if err != nil {
		return ProductPayment{}, err
	}

	logger.Info(ctx, "product debt paid", "product_id", productID, "amount", amount, "remaining", out.RemainingDebt)
	return out, nil
}

// PayPharmacyDebt pays down a pharmacy's receivable and appends a payment row.
func (s *Service) PayPharmacyDebt(ctx context.Context, owner, pharmacyID id.ID, amount types.Money) (PharmacyPayment, error) {
	var out PharmacyPayment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ph, err := s.pharmacies.GetForUpdate(ctx, pharmacyID)
		if err != nil {
			return err
		}
		if !ph.BelongsTo(owner) || ph.Archived {
			return apperror.NewNotFound("pharmacy", pharmacyID.String())
		}

		if err := CheckPayment(amount, ph.RemainingDebt); err != nil {
			return err
		}

		ph.RemainingDebt = ph.RemainingDebt.Sub(amount)
		ph.Touch()
		if err := s.pharmacies.SaveDebt(ctx, ph); err != nil {
			return fmt.Errorf("save pharmacy debt: %w", err)
		}

		payment := pharmacy.NewPayment(owner, ph.ID, amount)
		if err := s.payments.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		out = PharmacyPayment{
			PaymentID:     payment.ID,
			PharmacyID:    ph.ID,
			Amount:        amount,
			TotalDebt:     ph.TotalDebt,
			RemainingDebt: ph.RemainingDebt,
			Message:       confirmation(ph.TotalDebt, ph.RemainingDebt),
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "pharmacy",
			AggregateID:   ph.ID,
			EventType:     EventPharmacyDebtPaid,
			Payload:       out,
		})
	})
	s.recorder.Observe("debt.pay_pharmacy", err)
	if err != nil {
		return PharmacyPayment{}, err
	}

	logger.Info(ctx, "pharmacy debt paid", "pharmacy_id", pharmacyID, "amount", amount, "remaining", out.RemainingDebt)
	return out, nil
}

// ListPharmacyPayments returns the payment history of an owned pharmacy.
func (s *Service) ListPharmacyPayments(ctx context.Context, owner, pharmacyID id.ID) ([]*pharmacy.Payment, error) {
	ph, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if !ph.BelongsTo(owner) {
		return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return s.payments.ListPayments(ctx, pharmacyID)
}

// CreateRecord opens a standalone debt for an owned product.
func (s *Service) CreateRecord(ctx context.Context, owner, productID id.ID, amount types.Money) (*Record, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewInvalidAmount(amount.String())
	}
	rec := &Record{
		Owned:           entity.NewOwned(owner),
		ProductID:       productID,
		InitialAmount:   amount,
		RemainingAmount: amount,
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if !p.BelongsTo(owner) {
			return apperror.NewNotFound("product", productID.String())
		}
		return s.records.CreateRecord(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "debt record created", "record_id", rec.ID, "product_id", productID, "amount", amount)
	return rec, nil
}

// PayRecord pays down a standalone debt record.
func (s *Service) PayRecord(ctx context.Context, owner, recordID id.ID, amount types.Money) (*Record, error) {
	var rec *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.records.GetRecordForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		if !rec.BelongsTo(owner) {
			return apperror.NewNotFound("debt record", recordID.String())
		}
		if err := CheckPayment(amount, rec.RemainingAmount); err != nil {
			return err
		}
		rec.RemainingAmount = rec.RemainingAmount.Sub(amount)
		rec.Touch()
		return s.records.SaveRecord(ctx, rec)
	})
	s.recorder.Observe("debt.pay_record", err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecords lists the owner's debt records, optionally for one product.
func (s *Service) ListRecords(ctx context.Context, owner id.ID, productID *id.ID) ([]*Record, error) {
	return s.records.ListRecords(ctx, owner, productID)
}
