package receipt

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/pkg/logger"
)

// Event types published by the reconciler.
const (
	EventReceiptCreated      = "receipt.created"
	EventReceiptDeleted      = "receipt.deleted"
	EventReceiptStockUpdated = "receipt.stock_updated"
)

// Deps groups the collaborators of Service.
type Deps struct {
	Receipts   Repository
	Pharmacies PharmacyRepository
	Payments   PaymentRepository
	TxManager  tx.Manager
	Events     domain.EventPublisher
	Recorder   domain.OperationRecorder
}

// Service keeps pharmacy debt consistent with the receipts issued to it.
type Service struct {
	receipts   Repository
	pharmacies PharmacyRepository
	payments   PaymentRepository
	txManager  tx.Manager
	events     domain.EventPublisher
	recorder   domain.OperationRecorder
}

// NewService creates a new receipt service.
func NewService(d Deps) *Service {
	s := &Service{
		receipts:   d.Receipts,
		pharmacies: d.Pharmacies,
		payments:   d.Payments,
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

// DebtChange is the pharmacy balance after a receipt operation.
type DebtChange struct {
	ReceiptID     id.ID       `json:"receiptId"`
	PharmacyID    id.ID       `json:"pharmacyId"`
	Amount        types.Money `json:"amount"`
	TotalDebt     types.Money `json:"totalDebt"`
	RemainingDebt types.Money `json:"remainingDebt"`
}

// Create stores a receipt and adds its value to the pharmacy's debt.
func (s *Service) Create(ctx context.Context, owner, pharmacyID id.ID, lines []LineItem) (*Receipt, error) {
	r := NewReceipt(owner, pharmacyID, lines)
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ph, err := s.lockPharmacy(ctx, owner, pharmacyID)
		if err != nil {
			return err
		}
		if err := s.receipts.Create(ctx, r); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}

		amount := r.LinesTotal()
		ph.TotalDebt = ph.TotalDebt.Add(amount)
		ph.RemainingDebt = ph.RemainingDebt.Add(amount)
		ph.Touch()
		if err := s.pharmacies.SaveDebt(ctx, ph); err != nil {
			return fmt.Errorf("save pharmacy debt: %w", err)
		}

		return s.publish(ctx, EventReceiptCreated, r.ID, DebtChange{
			ReceiptID:     r.ID,
			PharmacyID:    ph.ID,
			Amount:        amount,
			TotalDebt:     ph.TotalDebt,
			RemainingDebt: ph.RemainingDebt,
		})
	})
	s.recorder.Observe("receipt.create", err)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "receipt created",
		"id", r.ID,
		"pharmacy_id", pharmacyID,
		"total_price", r.TotalPrice,
		"total_count", r.TotalCount)
	return r, nil
}

// Delete removes a receipt and reverses its debt. Remaining debt is
// re-derived from the new total minus all active payments, floored at zero.
func (s *Service) Delete(ctx context.Context, owner, receiptID id.ID) (DebtChange, error) {
	var change DebtChange
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.receipts.GetForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if !r.BelongsTo(owner) {
			return apperror.NewNotFound("receipt", receiptID.String())
		}

		ph, err := s.pharmacies.GetForUpdate(ctx, r.PharmacyID)
		if err != nil {
			return err
		}

		paid, err := s.payments.SumActivePayments(ctx, ph.ID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}

		amount := r.ReversalAmount()
		ph.TotalDebt = types.ClampZero(ph.TotalDebt.Sub(amount))
		ph.RemainingDebt = types.ClampZero(ph.TotalDebt.Sub(paid))
		ph.Touch()
		if err := s.pharmacies.SaveDebt(ctx, ph); err != nil {
			return fmt.Errorf("save pharmacy debt: %w", err)
		}
		if err := s.receipts.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("delete receipt: %w", err)
		}

		change = DebtChange{
			ReceiptID:     r.ID,
			PharmacyID:    ph.ID,
			Amount:        amount,
			TotalDebt:     ph.TotalDebt,
			RemainingDebt: ph.RemainingDebt,
		}
		return s.publish(ctx, EventReceiptDeleted, r.ID, change)
	})
	s.recorder.Observe("receipt.delete", err)
	if err != nil {
		return DebtChange{}, err
	}

	logger.Info(ctx, "receipt deleted",
		"id", receiptID,
		"amount", change.Amount,
		"remaining_debt", change.RemainingDebt)
	return change, nil
}

// UpdateStockFromReceipt deducts sold quantities from the pharmacy's latest
// receipt. Either every item applies or none does.
func (s *Service) UpdateStockFromReceipt(ctx context.Context, owner, pharmacyID id.ID, items []SellItem) ([]LineItem, error) {
	var updated []LineItem
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.lockPharmacy(ctx, owner, pharmacyID); err != nil {
			return err
		}

		r, err := s.receipts.LatestForUpdate(ctx, pharmacyID)
		if err != nil {
			return err
		}

		updated, err = applySales(r, items)
		if err != nil {
			return err
		}
		r.Touch()
		if err := s.receipts.SaveLines(ctx, r); err != nil {
			return fmt.Errorf("save receipt lines: %w", err)
		}
		return s.publish(ctx, EventReceiptStockUpdated, r.ID, updated)
	})
	s.recorder.Observe("receipt.update_stock", err)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock updated from receipt", "pharmacy_id", pharmacyID, "items", len(items))
	return updated, nil
}

// Get returns an owned receipt.
func (s *Service) Get(ctx context.Context, owner, receiptID id.ID) (*Receipt, error) {
	r, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if !r.BelongsTo(owner) {
		return nil, apperror.NewNotFound("receipt", receiptID.String())
	}
	return r, nil
}

// List returns the owner's receipts, optionally for one pharmacy.
func (s *Service) List(ctx context.Context, owner id.ID, filter Filter) (domain.ListResult[*Receipt], error) {
	filter.OwnerID = &owner
	return s.receipts.List(ctx, filter)
}

func (s *Service) lockPharmacy(ctx context.Context, owner, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	ph, err := s.pharmacies.GetForUpdate(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if !ph.BelongsTo(owner) || ph.Archived {
		return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return ph, nil
}

func (s *Service) publish(ctx context.Context, eventType string, receiptID id.ID, payload any) error {
	return s.events.Publish(ctx, domain.Event{
		AggregateType: "receipt",
		AggregateID:   receiptID,
		EventType:     eventType,
		Payload:       payload,
	})
}
