package messaging

import (
	"context"
	"fmt"
	"time"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/validation"
	"pharmaledger/internal/domain"
	"pharmaledger/pkg/logger"
)

// Service manages scheduled messages.
type Service struct {
	repo      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new messaging service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create schedules a message for the owner.
func (s *Service) Create(ctx context.Context, owner id.ID, in Input) (*Message, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	m := NewMessage(owner, in, s.now())
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	logger.Info(ctx, "message scheduled", "id", m.ID, "status", m.Status, "send_time", m.SendTime)
	return m, nil
}

// Get returns an owned message after promoting the owner's due messages.
func (s *Service) Get(ctx context.Context, owner, messageID id.ID) (*Message, error) {
	if _, err := s.repo.PromoteDue(ctx, &owner, s.now()); err != nil {
		return nil, fmt.Errorf("promote due messages: %w", err)
	}
	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !m.BelongsTo(owner) {
		return nil, apperror.NewNotFound("message", messageID.String())
	}
	return m, nil
}

// List returns the owner's messages after promoting due ones.
func (s *Service) List(ctx context.Context, owner id.ID, filter Filter) (domain.ListResult[*Message], error) {
	if _, err := s.repo.PromoteDue(ctx, &owner, s.now()); err != nil {
		return domain.ListResult[*Message]{}, fmt.Errorf("promote due messages: %w", err)
	}
	filter.OwnerID = &owner
	return s.repo.List(ctx, filter)
}

// Update edits an owned message that has not been sent yet.
func (s *Service) Update(ctx context.Context, owner, messageID id.ID, in Input) (*Message, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var m *Message
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, messageID)
		if err != nil {
			return err
		}
		if !m.BelongsTo(owner) {
			return apperror.NewNotFound("message", messageID.String())
		}
		if err := m.Edit(in, s.now()); err != nil {
			return err
		}
		return s.repo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes an owned message.
func (s *Service) Delete(ctx context.Context, owner, messageID id.ID) error {
	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if !m.BelongsTo(owner) {
		return apperror.NewNotFound("message", messageID.String())
	}
	if err := s.repo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	logger.Info(ctx, "message deleted", "id", messageID)
	return nil
}

// DeviceList is the gateway view: every owner's messages, optionally by status.
func (s *Service) DeviceList(ctx context.Context, status Status) (domain.ListResult[*Message], error) {
	if _, err := s.repo.PromoteDue(ctx, nil, s.now()); err != nil {
		return domain.ListResult[*Message]{}, fmt.Errorf("promote due messages: %w", err)
	}
	filter := Filter{ListFilter: domain.DefaultListFilter(), Status: status}
	filter.Limit = 500
	return s.repo.List(ctx, filter)
}

// MarkStatus is the gateway's status report. When a daily message is sent,
// its next occurrence is scheduled in the same transaction.
func (s *Service) MarkStatus(ctx context.Context, messageID id.ID, status Status) (*Message, error) {
	var m *Message
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetForUpdate(ctx, messageID)
		if err != nil {
			return err
		}
		if err := m.Transition(status); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("update message: %w", err)
		}
		if m.Status == StatusSent && m.DailyRepeat {
			next := m.NextRepeat()
			if err := s.repo.Create(ctx, next); err != nil {
				return fmt.Errorf("schedule repeat: %w", err)
			}
			logger.Info(ctx, "daily message rescheduled", "id", next.ID, "send_time", next.SendTime)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "message status changed", "id", messageID, "status", status)
	return m, nil
}

// PromoteDue moves every owner's due messages to sending.
func (s *Service) PromoteDue(ctx context.Context) (int64, error) {
	n, err := s.repo.PromoteDue(ctx, nil, s.now())
	if err != nil {
		return 0, fmt.Errorf("promote due messages: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "due messages promoted", "count", n)
	}
	return n, nil
}
