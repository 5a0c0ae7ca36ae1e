package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/pkg/logger"
)

const uniqueTTL = 50 * time.Second

// NotificationDispatcher delivers due notifications.
type NotificationDispatcher interface {
	DispatchDue(ctx context.Context) (notification.DispatchResult, error)
}

// MessagePromoter moves due scheduled messages to sending.
type MessagePromoter interface {
	PromoteDue(ctx context.Context) (int64, error)
}

// OutboxProcessor relays one batch of outbox events.
type OutboxProcessor interface {
	ProcessBatch(ctx context.Context) (postgres.RelayStats, error)
}

// TokenCleaner removes expired refresh tokens.
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// JobObserver records job outcomes.
type JobObserver interface {
	ObserveJob(task string, started time.Time, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveJob(string, time.Time, error) {}

// Handlers adapts domain sweeps to asynq handlers.
type Handlers struct {
	Notifications NotificationDispatcher
	Messages      MessagePromoter
	Outbox        OutboxProcessor
	Tokens        TokenCleaner
	Observer      JobObserver
}

// TaskHandlers returns the handler for every configured sweep.
func (h *Handlers) TaskHandlers() []TaskHandler {
	var out []TaskHandler
	if h.Notifications != nil {
		out = append(out, TaskHandler{Type: TaskNotificationsDispatch, Handler: h.observe(TaskNotificationsDispatch, h.dispatchNotifications)})
	}
	if h.Messages != nil {
		out = append(out, TaskHandler{Type: TaskMessagesPromote, Handler: h.observe(TaskMessagesPromote, h.promoteMessages)})
	}
	if h.Outbox != nil {
		out = append(out, TaskHandler{Type: TaskOutboxRelay, Handler: h.observe(TaskOutboxRelay, h.relayOutbox)})
	}
	if h.Tokens != nil {
		out = append(out, TaskHandler{Type: TaskAuthCleanupTokens, Handler: h.observe(TaskAuthCleanupTokens, h.cleanupTokens)})
	}
	return out
}

func (h *Handlers) observe(taskType string, fn func(ctx context.Context) error) asynq.HandlerFunc {
	observer := h.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return func(ctx context.Context, _ *asynq.Task) error {
		started := time.Now()
		err := fn(ctx)
		observer.ObserveJob(taskType, started, err)
		if err != nil {
			logger.Error(ctx, "job failed", "task", taskType, "error", err)
		}
		return err
	}
}

func (h *Handlers) dispatchNotifications(ctx context.Context) error {
	res, err := h.Notifications.DispatchDue(ctx)
	if err != nil {
		return err
	}
	if res.Sent > 0 || res.Failed > 0 {
		logger.Info(ctx, "notifications dispatched", "sent", res.Sent, "failed", res.Failed)
	}
	return nil
}

func (h *Handlers) promoteMessages(ctx context.Context) error {
	n, err := h.Messages.PromoteDue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info(ctx, "messages promoted", "count", n)
	}
	return nil
}

func (h *Handlers) relayOutbox(ctx context.Context) error {
	stats, err := h.Outbox.ProcessBatch(ctx)
	if err != nil {
		return err
	}
	if stats.Published > 0 || stats.Failed > 0 || stats.DeadLetter > 0 {
		logger.Info(ctx, "outbox relayed",
			"published", stats.Published, "failed", stats.Failed, "dead_letter", stats.DeadLetter)
	}
	return nil
}

func (h *Handlers) cleanupTokens(ctx context.Context) error {
	n, err := h.Tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info(ctx, "expired refresh tokens removed", "count", n)
	}
	return nil
}
