package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/documents/receipt"
	"pharmaledger/internal/domain/registers/debt"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const (
	pharmacyTable = "cat_pharmacies"
	paymentTable  = "reg_pharmacy_payments"
)

// PharmacyRepo implements pharmacy.Repository and the pharmacy-facing
// interfaces of the debt ledger and receipt reconciler.
type PharmacyRepo struct {
	*BaseCatalogRepo[*pharmacy.Pharmacy]
}

var (
	_ pharmacy.Repository        = (*PharmacyRepo)(nil)
	_ debt.PharmacyRepository    = (*PharmacyRepo)(nil)
	_ receipt.PharmacyRepository = (*PharmacyRepo)(nil)
)

// NewPharmacyRepo creates a new pharmacy repository.
func NewPharmacyRepo(txm *postgres.TxManager) *PharmacyRepo {
	return &PharmacyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, pharmacyTable, "pharmacy",
			postgres.ExtractDBColumns[pharmacy.Pharmacy](),
			func() *pharmacy.Pharmacy { return &pharmacy.Pharmacy{} },
			"total_debt", "remaining_debt",
		),
	}
}

// SaveDebt writes total_debt and remaining_debt.
func (r *PharmacyRepo) SaveDebt(ctx context.Context, p *pharmacy.Pharmacy) error {
	return r.UpdateColumns(ctx, p, "total_debt", "remaining_debt")
}

// PaymentRepo stores the append-only pharmacy payment history.
type PaymentRepo struct {
	*BaseCatalogRepo[*pharmacy.Payment]
}

var (
	_ debt.PaymentRepository    = (*PaymentRepo)(nil)
	_ receipt.PaymentRepository = (*PaymentRepo)(nil)
)

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, paymentTable, "payment",
			postgres.ExtractDBColumns[pharmacy.Payment](),
			func() *pharmacy.Payment { return &pharmacy.Payment{} },
		).WithParentColumn("pharmacy_id"),
	}
}

// CreatePayment appends a payment.
func (r *PaymentRepo) CreatePayment(ctx context.Context, p *pharmacy.Payment) error {
	return r.Create(ctx, p)
}

// ListPayments returns the pharmacy's active payments, newest first.
func (r *PaymentRepo) ListPayments(ctx context.Context, pharmacyID id.ID) ([]*pharmacy.Payment, error) {
	return r.FindMany(ctx, r.baseSelect().
		Where(squirrel.Eq{"pharmacy_id": pharmacyID}).
		Where(squirrel.Eq{"archived": false}).
		OrderBy("created_at DESC", "id"))
}

// SumActivePayments totals non-archived payments of the pharmacy.
func (r *PaymentRepo) SumActivePayments(ctx context.Context, pharmacyID id.ID) (types.Money, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(SUM(amount), 0)").
		From(paymentTable).
		Where(squirrel.Eq{"pharmacy_id": pharmacyID}).
		Where(squirrel.Eq{"archived": false}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}
