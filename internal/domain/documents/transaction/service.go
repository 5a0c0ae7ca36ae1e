package transaction

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/validation"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/pkg/logger"
)

// Service records pharmacy transactions.
type Service struct {
	repo       Repository
	medicines  MedicineRepository
	pharmacies PharmacyRepository
	txManager  tx.Manager
	recorder   domain.OperationRecorder
}

// NewService creates a new transaction service.
func NewService(
	repo Repository,
	medicines MedicineRepository,
	pharmacies PharmacyRepository,
	txManager tx.Manager,
	recorder domain.OperationRecorder,
) *Service {
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	return &Service{
		repo:       repo,
		medicines:  medicines,
		pharmacies: pharmacies,
		txManager:  txManager,
		recorder:   recorder,
	}
}

// Record writes one transaction and updates the medicine counters atomically.
func (s *Service) Record(ctx context.Context, owner id.ID, in Input) (*Transaction, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var t *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkPharmacy(ctx, owner, in.PharmacyID); err != nil {
			return err
		}
		m, err := s.lockMedicine(ctx, owner, in.MedicineID)
		if err != nil {
			return err
		}
		t, err = s.write(ctx, owner, m, in.PharmacyID, in.QuantityPills, in.QuantityPackages, in.Type)
		return err
	})
	s.recorder.Observe("transaction.record", err)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transaction recorded",
		"id", t.ID,
		"type", t.Type,
		"medicine_id", t.MedicineID,
		"units", t.TotalUnits())
	return t, nil
}

// BulkCreate records a "given" transaction per item in a single database
// transaction. Items whose medicine cannot be resolved for the owner are
// skipped; an unknown pharmacy fails the whole call.
// Bulk lines are stock handed to the pharmacy, so each one increments the
// medicine's given quantity like a single "given" transaction does.
func (s *Service) BulkCreate(ctx context.Context, owner, pharmacyID id.ID, items []BulkItem) (BulkResult, error) {
	if err := validation.Items(items); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{IDs: make([]id.ID, 0, len(items))}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkPharmacy(ctx, owner, pharmacyID); err != nil {
			return err
		}

		for _, item := range items {
			m, err := s.lockMedicine(ctx, owner, item.MedicineID)
			if apperror.IsNotFound(err) {
				logger.Debug(ctx, "bulk transaction item skipped", "medicine_id", item.MedicineID)
				continue
			}
			if err != nil {
				return err
			}

			t, err := s.write(ctx, owner, m, pharmacyID, item.QuantityPills, item.QuantityPackages, TypeGiven)
			if err != nil {
				return err
			}
			result.IDs = append(result.IDs, t.ID)
		}
		return nil
	})
	s.recorder.Observe("transaction.bulk_create", err)
	if err != nil {
		return BulkResult{}, err
	}

	result.Created = len(result.IDs)
	logger.Info(ctx, "bulk transactions recorded",
		"pharmacy_id", pharmacyID,
		"requested", len(items),
		"created", result.Created)
	return result, nil
}

// Get returns an owned transaction.
func (s *Service) Get(ctx context.Context, owner, transactionID id.ID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.BelongsTo(owner) {
		return nil, apperror.NewNotFound("transaction", transactionID.String())
	}
	return t, nil
}

// List returns the owner's transactions.
func (s *Service) List(ctx context.Context, owner id.ID, filter Filter) (domain.ListResult[*Transaction], error) {
	filter.OwnerID = &owner
	return s.repo.List(ctx, filter)
}

// Summary aggregates the owner's active transactions.
func (s *Service) Summary(ctx context.Context, owner id.ID, pharmacyID *id.ID) (Summary, error) {
	return s.repo.Summarize(ctx, owner, pharmacyID)
}

// Archive soft-deletes a transaction. Medicine counters are not reverted.
func (s *Service) Archive(ctx context.Context, owner, transactionID id.ID) error {
	return s.setArchived(ctx, owner, transactionID, true)
}

// Restore brings an archived transaction back.
func (s *Service) Restore(ctx context.Context, owner, transactionID id.ID) error {
	return s.setArchived(ctx, owner, transactionID, false)
}

func (s *Service) setArchived(ctx context.Context, owner, transactionID id.ID, archived bool) error {
	if _, err := s.Get(ctx, owner, transactionID); err != nil {
		return err
	}
	if err := s.repo.SetArchived(ctx, transactionID, archived); err != nil {
		return err
	}
	logger.Info(ctx, "transaction archive flag changed", "id", transactionID, "archived", archived)
	return nil
}

func (s *Service) checkPharmacy(ctx context.Context, owner, pharmacyID id.ID) error {
	ph, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return err
	}
	if !ph.BelongsTo(owner) || ph.Archived {
		return apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return nil
}

func (s *Service) lockMedicine(ctx context.Context, owner, medicineID id.ID) (*medicine.Medicine, error) {
	m, err := s.medicines.GetForUpdate(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if !m.BelongsTo(owner) || m.Archived {
		return nil, apperror.NewNotFound("medicine", medicineID.String())
	}
	return m, nil
}

func (s *Service) write(ctx context.Context, owner id.ID, m *medicine.Medicine, pharmacyID id.ID, pills, packages int64, typ Type) (*Transaction, error) {
	t, err := build(owner, m, pharmacyID, pills, packages, typ)
	if err != nil {
		return nil, err
	}
	if err := s.medicines.SaveCounters(ctx, m); err != nil {
		return nil, fmt.Errorf("save medicine counters: %w", err)
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}
