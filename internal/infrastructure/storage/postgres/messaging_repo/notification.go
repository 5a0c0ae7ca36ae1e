package messaging_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const notificationTable = "msg_notifications"

var notificationColumns = postgres.ExtractDBColumns[notification.Notification]()

// NotificationRepo implements notification.Repository.
type NotificationRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ notification.Repository = (*NotificationRepo)(nil)

// NewNotificationRepo creates a new notification repository.
func NewNotificationRepo(txm *postgres.TxManager) *NotificationRepo {
	return &NotificationRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *NotificationRepo) exec(ctx context.Context, q squirrel.Sqlizer, op string, notificationID id.ID) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, op, "notification", notificationID.String())
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("notification", notificationID.String())
	}
	return nil
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	data := postgres.Pick(postgres.StructToMap(n), notificationColumns)
	return r.exec(ctx, r.builder.Insert(notificationTable).SetMap(data), "insert", n.ID)
}

// GetByID loads one notification.
func (r *NotificationRepo) GetByID(ctx context.Context, notificationID id.ID) (*notification.Notification, error) {
	sql, args, err := r.builder.Select(notificationColumns...).
		From(notificationTable).
		Where(squirrel.Eq{"id": notificationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var n notification.Notification
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &n, sql, args...); err != nil {
		return nil, postgres.MapError(err, "get", "notification", notificationID.String())
	}
	return &n, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID id.ID, unreadOnly bool, limit, offset int) ([]*notification.Notification, int64, error) {
	cond := squirrel.And{squirrel.Eq{"user_id": userID}}
	if unreadOnly {
		cond = append(cond, squirrel.Eq{"read": false})
	}

	querier := r.txm.GetQuerier(ctx)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(notificationTable).Where(cond).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	q := r.builder.Select(notificationColumns...).
		From(notificationTable).
		Where(cond).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []*notification.Notification
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead sets the read flag.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID id.ID) error {
	return r.exec(ctx, r.builder.Update(notificationTable).
		Set("read", true).
		Where(squirrel.Eq{"id": notificationID}), "mark read", notificationID)
}

// Delete removes a notification.
func (r *NotificationRepo) Delete(ctx context.Context, notificationID id.ID) error {
	return r.exec(ctx, r.builder.Delete(notificationTable).
		Where(squirrel.Eq{"id": notificationID}), "delete", notificationID)
}

func (r *NotificationRepo) dueQuery(now time.Time, limit int) squirrel.SelectBuilder {
	return r.builder.Select(notificationColumns...).
		From(notificationTable).
		Where(squirrel.Eq{"is_completed": false}).
		Where(squirrel.Eq{"read": false}).
		Where(squirrel.LtOrEq{"scheduled_time": now}).
		OrderBy("scheduled_time").
		Limit(uint64(limit))
}

// ListDue returns pending notifications scheduled at or before now.
func (r *NotificationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	sql, args, err := r.dueQuery(now, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*notification.Notification
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	return items, nil
}

// MarkCompleted flags a delivered notification.
func (r *NotificationRepo) MarkCompleted(ctx context.Context, notificationID id.ID) error {
	return r.exec(ctx, r.builder.Update(notificationTable).
		Set("is_completed", true).
		Where(squirrel.Eq{"id": notificationID}), "mark completed", notificationID)
}
