package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/pkg/logger"
)

const (
	outboxTable    = "sys_outbox"
	outboxDLQTable = "sys_outbox_dlq"

	// MaxOutboxRetries is the number of failed deliveries before a message
	// is marked failed and becomes eligible for the dead-letter table.
	MaxOutboxRetries = 5
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage is a row of the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id" json:"id"`
	AggregateType string       `db:"aggregate_type" json:"aggregateType"`
	AggregateID   id.ID        `db:"aggregate_id" json:"aggregateId"`
	EventType     string       `db:"event_type" json:"eventType"`
	Payload       []byte       `db:"payload" json:"payload"`
	Status        OutboxStatus `db:"status" json:"status"`
	RetryCount    int          `db:"retry_count" json:"retryCount"`
	LastError     *string      `db:"last_error" json:"lastError,omitempty"`
	NextRetryAt   *time.Time   `db:"next_retry_at" json:"nextRetryAt,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	PublishedAt   *time.Time   `db:"published_at" json:"publishedAt,omitempty"`
}

var outboxColumns = ExtractDBColumns[OutboxMessage]()

// OutboxPublisher writes ledger events to the outbox table.
type OutboxPublisher struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ domain.EventPublisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Publish writes an event within the current transaction. Calling it
// outside a transaction is a programming error.
func (p *OutboxPublisher) Publish(ctx context.Context, event domain.Event) error {
	t := p.txManager.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	sql, args, err := p.builder.Insert(outboxTable).
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at").
		Values(id.New(), event.AggregateType, event.AggregateID, event.EventType, payload, OutboxStatusPending, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}

	if _, err := t.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler delivers one outbox message.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay moves pending outbox rows to a handler. Rows are claimed with
// FOR UPDATE SKIP LOCKED so several workers can relay concurrently.
type OutboxRelay struct {
	txManager *TxManager
	batchSize int
	handler   OutboxHandler
	builder   squirrel.StatementBuilderType
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		txManager: txManager,
		batchSize: batchSize,
		handler:   handler,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// RelayStats summarizes one relay pass.
type RelayStats struct {
	Published  int
	Failed     int
	DeadLetter int64
}

// ProcessBatch claims and delivers one batch of due pending messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (RelayStats, error) {
	var stats RelayStats
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.claimQuery(time.Now().UTC()).ToSql()
		if err != nil {
			return fmt.Errorf("build outbox claim: %w", err)
		}

		var messages []*OutboxMessage
		if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, sql, args...); err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			if err := r.deliver(ctx, msg); err != nil {
				logger.Warn(ctx, "outbox delivery failed",
					"id", msg.ID, "event_type", msg.EventType, "retry", msg.RetryCount+1, "error", err)
				stats.Failed++
				continue
			}
			stats.Published++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	moved, err := r.MoveToDLQ(ctx)
	if err != nil {
		return stats, err
	}
	stats.DeadLetter = moved
	return stats, nil
}

func (r *OutboxRelay) claimQuery(now time.Time) squirrel.SelectBuilder {
	return r.builder.Select(outboxColumns...).
		From(outboxTable).
		Where(squirrel.Eq{"status": OutboxStatusPending}).
		Where(squirrel.Or{
			squirrel.Eq{"next_retry_at": nil},
			squirrel.LtOrEq{"next_retry_at": now},
		}).
		OrderBy("created_at").
		Limit(uint64(r.batchSize)).
		Suffix("FOR UPDATE SKIP LOCKED")
}

func (r *OutboxRelay) deliver(ctx context.Context, msg *OutboxMessage) error {
	q := r.txManager.GetQuerier(ctx)
	handleErr := r.handler.Handle(ctx, msg)
	now := time.Now().UTC()

	var upd squirrel.UpdateBuilder
	if handleErr != nil {
		retries := msg.RetryCount + 1
		status := OutboxStatusPending
		if retries >= MaxOutboxRetries {
			status = OutboxStatusFailed
		}
		upd = r.builder.Update(outboxTable).
			Set("retry_count", retries).
			Set("last_error", handleErr.Error()).
			Set("next_retry_at", now.Add(RetryBackoff(retries))).
			Set("status", status).
			Where(squirrel.Eq{"id": msg.ID})
	} else {
		upd = r.builder.Update(outboxTable).
			Set("status", OutboxStatusPublished).
			Set("published_at", now).
			Where(squirrel.Eq{"id": msg.ID})
	}

	sql, args, err := upd.ToSql()
	if err != nil {
		return fmt.Errorf("build outbox update: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update outbox message: %w", err)
	}
	return handleErr
}

// RetryBackoff is the delay before the given retry: one minute doubled per
// attempt, capped at one hour.
func RetryBackoff(retries int) time.Duration {
	if retries < 1 {
		retries = 1
	}
	d := time.Minute << (retries - 1)
	if d > time.Hour || d <= 0 {
		return time.Hour
	}
	return d
}

// MoveToDLQ moves failed messages to the dead-letter table.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		WITH moved AS (
			DELETE FROM `+outboxTable+`
			WHERE status = $1 AND retry_count >= $2
			RETURNING *
		)
		INSERT INTO `+outboxDLQTable+`
		SELECT *, NOW() AS failed_at FROM moved
	`, OutboxStatusFailed, MaxOutboxRetries)
	if err != nil {
		return 0, fmt.Errorf("move to DLQ: %w", err)
	}
	return result.RowsAffected(), nil
}
