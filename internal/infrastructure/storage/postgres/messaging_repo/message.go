// Package messaging_repo provides PostgreSQL implementations for scheduled
// messages and notifications.
package messaging_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/messaging"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/internal/infrastructure/storage/postgres/catalog_repo"
)

const messageTable = "msg_messages"

// MessageRepo implements messaging.Repository.
type MessageRepo struct {
	*catalog_repo.BaseCatalogRepo[*messaging.Message]
}

var _ messaging.Repository = (*MessageRepo)(nil)

// NewMessageRepo creates a new message repository.
func NewMessageRepo(txm *postgres.TxManager) *MessageRepo {
	return &MessageRepo{
		BaseCatalogRepo: catalog_repo.NewBaseCatalogRepo(
			txm, messageTable, "message",
			postgres.ExtractDBColumns[messaging.Message](),
			func() *messaging.Message { return &messaging.Message{} },
		),
	}
}

// List returns messages matching the filter, by send time.
func (r *MessageRepo) List(ctx context.Context, filter messaging.Filter) (domain.ListResult[*messaging.Message], error) {
	if filter.OrderBy == "" || filter.OrderBy == "-created_at" {
		filter.OrderBy = "send_time"
	}
	return r.ListWhere(ctx, filter.ListFilter, messageConditions(filter))
}

func messageConditions(filter messaging.Filter) squirrel.And {
	cond := squirrel.And{}
	if filter.Status != "" {
		cond = append(cond, squirrel.Eq{"status": filter.Status})
	}
	if filter.RecipientID != "" {
		cond = append(cond, squirrel.Eq{"recipient_id": filter.RecipientID})
	}
	return cond
}

func promoteQuery(owner *id.ID, now time.Time) squirrel.UpdateBuilder {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update(messageTable).
		Set("status", messaging.StatusSending).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": messaging.StatusWaiting}).
		Where(squirrel.LtOrEq{"send_time": now})
	if owner != nil {
		q = q.Where(squirrel.Eq{"owner_id": *owner})
	}
	return q
}

// PromoteDue moves due waiting messages to sending.
func (r *MessageRepo) PromoteDue(ctx context.Context, owner *id.ID, now time.Time) (int64, error) {
	sql, args, err := promoteQuery(owner, now).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build promote: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("promote messages: %w", err)
	}
	return tag.RowsAffected(), nil
}
