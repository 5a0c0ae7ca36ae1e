package notification

import (
	"context"
	"fmt"
	"time"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/validation"
	"pharmaledger/pkg/logger"
)

const dispatchBatch = 200

// Service manages notifications.
type Service struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

// NewService creates a notification service.
func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a notification for the user.
func (s *Service) Create(ctx context.Context, userID id.ID, in Input) (*Notification, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	n := NewNotification(userID, in, s.now())
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	logger.Info(ctx, "notification created", "id", n.ID, "user_id", userID)
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID id.ID, unreadOnly bool, limit, offset int) ([]*Notification, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks the user's notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID id.ID) error {
	if _, err := s.owned(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, notificationID)
}

// Delete removes the user's notification.
func (s *Service) Delete(ctx context.Context, userID, notificationID id.ID) error {
	if _, err := s.owned(ctx, userID, notificationID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	logger.Info(ctx, "notification deleted", "id", notificationID)
	return nil
}

func (s *Service) owned(ctx context.Context, userID, notificationID id.ID) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, apperror.NewNotFound("notification", notificationID.String())
	}
	return n, nil
}

// DispatchDue publishes every due notification and marks it completed.
// A failed publish leaves the notification pending for the next sweep.
func (s *Service) DispatchDue(ctx context.Context) (DispatchResult, error) {
	var res DispatchResult
	due, err := s.repo.ListDue(ctx, s.now(), dispatchBatch)
	if err != nil {
		return res, fmt.Errorf("list due notifications: %w", err)
	}
	for _, n := range due {
		if err := s.publisher.Publish(ctx, Topic(n.UserID), n.payload()); err != nil {
			logger.Warn(ctx, "notification publish failed", "id", n.ID, "error", err)
			res.Failed++
			continue
		}
		if err := s.repo.MarkCompleted(ctx, n.ID); err != nil {
			return res, fmt.Errorf("mark notification completed: %w", err)
		}
		res.Sent++
	}
	if res.Sent > 0 || res.Failed > 0 {
		logger.Info(ctx, "notifications dispatched", "sent", res.Sent, "failed", res.Failed)
	}
	return res, nil
}
