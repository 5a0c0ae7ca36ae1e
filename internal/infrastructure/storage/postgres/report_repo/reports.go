// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/reports"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const (
	transactionTable = "doc_pharmacy_transactions"
	medicineTable    = "cat_medicines"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) statisticsQuery(owner, pharmacyID id.ID) squirrel.SelectBuilder {
	return r.builder.Select(
		"COALESCE(SUM(total_price), 0) AS total_amount",
		"COUNT(*) AS total_transactions",
		"COALESCE(SUM(quantity_pills), 0) AS total_medicines",
	).
		From(transactionTable).
		Where(squirrel.Eq{"owner_id": owner}).
		Where(squirrel.Eq{"pharmacy_id": pharmacyID}).
		Where(squirrel.Eq{"archived": false})
}

// PharmacyStatistics aggregates the pharmacy's active transactions.
func (r *ReportRepo) PharmacyStatistics(ctx context.Context, owner, pharmacyID id.ID) (reports.PharmacyStatistics, error) {
	var stats reports.PharmacyStatistics

	sql, args, err := r.statisticsQuery(owner, pharmacyID).ToSql()
	if err != nil {
		return stats, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &stats, sql, args...); err != nil {
		return stats, fmt.Errorf("pharmacy statistics: %w", err)
	}
	stats.PharmacyID = pharmacyID
	return stats, nil
}

func (r *ReportRepo) stockQuery(owner, pharmacyID id.ID, medicineID *id.ID) squirrel.SelectBuilder {
	q := r.builder.Select(
		"t.medicine_id",
		"m.name AS medicine_name",
		"COALESCE(SUM(t.quantity_pills * t.quantity_packages) FILTER (WHERE t.transaction_type = 'given'), 0) AS given",
		"COALESCE(SUM(t.quantity_pills * t.quantity_packages) FILTER (WHERE t.transaction_type = 'sold'), 0) AS sold",
	).
		From(transactionTable + " t").
		Join(medicineTable + " m ON m.id = t.medicine_id").
		Where(squirrel.Eq{"t.owner_id": owner}).
		Where(squirrel.Eq{"t.pharmacy_id": pharmacyID}).
		Where(squirrel.Eq{"t.archived": false})
	if medicineID != nil {
		q = q.Where(squirrel.Eq{"t.medicine_id": *medicineID})
	}
	return q.GroupBy("t.medicine_id", "m.name").OrderBy("m.name")
}

// PharmacyStock sums given and sold pills per medicine.
func (r *ReportRepo) PharmacyStock(ctx context.Context, owner, pharmacyID id.ID, medicineID *id.ID) ([]reports.PharmacyStock, error) {
	sql, args, err := r.stockQuery(owner, pharmacyID, medicineID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.PharmacyStock
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("pharmacy stock: %w", err)
	}
	return rows, nil
}
