// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/documents/transaction"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/internal/infrastructure/storage/postgres/catalog_repo"
)

const transactionTable = "doc_pharmacy_transactions"

// TransactionRepo implements transaction.Repository. Rows are written once;
// only the archived flag changes afterwards.
type TransactionRepo struct {
	*catalog_repo.BaseCatalogRepo[*transaction.Transaction]
}

var _ transaction.Repository = (*TransactionRepo)(nil)

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(txm *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		BaseCatalogRepo: catalog_repo.NewBaseCatalogRepo(
			txm, transactionTable, "transaction",
			postgres.ExtractDBColumns[transaction.Transaction](),
			func() *transaction.Transaction { return &transaction.Transaction{} },
		).WithParentColumn("pharmacy_id"),
	}
}

// List returns transactions matching the filter, newest first by default.
func (r *TransactionRepo) List(ctx context.Context, filter transaction.Filter) (domain.ListResult[*transaction.Transaction], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "-created_at"
	}
	return r.ListWhere(ctx, filter.ListFilter, transactionConditions(filter))
}

func transactionConditions(filter transaction.Filter) squirrel.And {
	cond := squirrel.And{}
	if filter.PharmacyID != nil {
		cond = append(cond, squirrel.Eq{"pharmacy_id": *filter.PharmacyID})
	}
	if filter.MedicineID != nil {
		cond = append(cond, squirrel.Eq{"medicine_id": *filter.MedicineID})
	}
	if filter.Type != "" {
		cond = append(cond, squirrel.Eq{"transaction_type": filter.Type})
	}
	return cond
}

func summaryQuery(owner id.ID, pharmacyID *id.ID) squirrel.SelectBuilder {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"COALESCE(SUM(total_price), 0) AS total_amount",
			"COUNT(*) AS total_transactions",
			"COALESCE(SUM(quantity_pills), 0) AS total_medicines",
		).
		From(transactionTable).
		Where(squirrel.Eq{"owner_id": owner}).
		Where(squirrel.Eq{"archived": false})
	if pharmacyID != nil {
		q = q.Where(squirrel.Eq{"pharmacy_id": *pharmacyID})
	}
	return q
}

// Summarize aggregates non-archived transactions.
func (r *TransactionRepo) Summarize(ctx context.Context, owner id.ID, pharmacyID *id.ID) (transaction.Summary, error) {
	var s transaction.Summary
	sql, args, err := summaryQuery(owner, pharmacyID).ToSql()
	if err != nil {
		return s, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.Querier(ctx), &s, sql, args...); err != nil {
		return s, fmt.Errorf("summarize transactions: %w", err)
	}
	return s, nil
}
