// Package register_repo provides PostgreSQL implementations for ledger
// register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/registers/debt"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const debtRecordsTable = "reg_debt_records"

var debtRecordColumns = postgres.ExtractDBColumns[debt.Record]()

// DebtRecordRepo implements debt.RecordRepository.
type DebtRecordRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ debt.RecordRepository = (*DebtRecordRepo)(nil)

// NewDebtRecordRepo creates a new debt record repository.
func NewDebtRecordRepo(txm *postgres.TxManager) *DebtRecordRepo {
	return &DebtRecordRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateRecord inserts a debt record.
func (r *DebtRecordRepo) CreateRecord(ctx context.Context, rec *debt.Record) error {
	data := postgres.Pick(postgres.StructToMap(rec), debtRecordColumns)
	sql, args, err := r.builder.Insert(debtRecordsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "insert", "debt_record", rec.ID.String())
	}
	return nil
}

// GetRecordForUpdate loads and locks a debt record.
func (r *DebtRecordRepo) GetRecordForUpdate(ctx context.Context, recordID id.ID) (*debt.Record, error) {
	sql, args, err := r.builder.Select(debtRecordColumns...).
		From(debtRecordsTable).
		Where(squirrel.Eq{"id": recordID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec debt.Record
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		return nil, postgres.MapError(err, "get", "debt_record", recordID.String())
	}
	return &rec, nil
}

// SaveRecord writes the remaining amount.
func (r *DebtRecordRepo) SaveRecord(ctx context.Context, rec *debt.Record) error {
	sql, args, err := r.builder.Update(debtRecordsTable).
		Set("remaining_amount", rec.RemainingAmount).
		Set("updated_at", rec.UpdatedAt).
		Where(squirrel.Eq{"id": rec.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "update", "debt_record", rec.ID.String())
	}
	return nil
}

// ListRecords returns the owner's active records, optionally for one product.
func (r *DebtRecordRepo) ListRecords(ctx context.Context, owner id.ID, productID *id.ID) ([]*debt.Record, error) {
	q := r.builder.Select(debtRecordColumns...).
		From(debtRecordsTable).
		Where(squirrel.Eq{"owner_id": owner}).
		Where(squirrel.Eq{"archived": false}).
		OrderBy("created_at DESC", "id")
	if productID != nil {
		q = q.Where(squirrel.Eq{"product_id": *productID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*debt.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list debt records: %w", err)
	}
	return items, nil
}
