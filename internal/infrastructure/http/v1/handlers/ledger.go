package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/registers/companydebt"
	"pharmaledger/internal/domain/registers/debt"
	"pharmaledger/internal/domain/registers/stock"
	"pharmaledger/internal/infrastructure/http/v1/dto"
)

// StockService moves product stock.
type StockService interface {
	AddStock(ctx context.Context, owner, productID id.ID, count int64) (stock.Movement, error)
	RemoveStock(ctx context.Context, owner, productID id.ID, count int64) (stock.Movement, error)
}

// DebtService settles product and pharmacy debts.
type DebtService interface {
	PayProductDebt(ctx context.Context, owner, productID id.ID, amount types.Money) (debt.ProductPayment, error)
	PayPharmacyDebt(ctx context.Context, owner, pharmacyID id.ID, amount types.Money) (debt.PharmacyPayment, error)
	ListPharmacyPayments(ctx context.Context, owner, pharmacyID id.ID) ([]*pharmacy.Payment, error)
	CreateRecord(ctx context.Context, owner, productID id.ID, amount types.Money) (*debt.Record, error)
	PayRecord(ctx context.Context, owner, recordID id.ID, amount types.Money) (*debt.Record, error)
	ListRecords(ctx context.Context, owner id.ID, productID *id.ID) ([]*debt.Record, error)
}

// CompanyDebtService aggregates and pays debts per manufacturer.
type CompanyDebtService interface {
	List(ctx context.Context, owner id.ID) ([]companydebt.CompanyDebt, error)
	Pay(ctx context.Context, owner, companyID id.ID, amount types.Money, order companydebt.AllocationOrder) (companydebt.PaymentResult, error)
	Summary(ctx context.Context, owner id.ID) (companydebt.Summary, error)
}

// LedgerHandler serves stock movements and debt payments.
type LedgerHandler struct {
	*BaseHandler
	stock     StockService
	debts     DebtService
	companies CompanyDebtService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, stock StockService, debts DebtService, companies CompanyDebtService) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		stock:       stock,
		debts:       debts,
		companies:   companies,
	}
}

// AddStock handles POST /products/:id/stock/add
func (h *LedgerHandler) AddStock(c *gin.Context) {
	h.moveStock(c, h.stock.AddStock)
}

// RemoveStock handles POST /products/:id/stock/remove
func (h *LedgerHandler) RemoveStock(c *gin.Context) {
	h.moveStock(c, h.stock.RemoveStock)
}

func (h *LedgerHandler) moveStock(c *gin.Context, move func(context.Context, id.ID, id.ID, int64) (stock.Movement, error)) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.StockMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := move(c.Request.Context(), owner, productID, req.Count)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// PayProductDebt handles POST /products/:id/pay-debt
func (h *LedgerHandler) PayProductDebt(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	out, err := h.debts.PayProductDebt(c.Request.Context(), owner, productID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// PayPharmacyDebt handles POST /pharmacies/:id/pay-debt
func (h *LedgerHandler) PayPharmacyDebt(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	pharmacyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	out, err := h.debts.PayPharmacyDebt(c.Request.Context(), owner, pharmacyID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, out)
}

// ListPharmacyPayments handles GET /pharmacies/:id/payments
func (h *LedgerHandler) ListPharmacyPayments(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	pharmacyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	payments, err := h.debts.ListPharmacyPayments(c.Request.Context(), owner, pharmacyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if payments == nil {
		payments = []*pharmacy.Payment{}
	}
	h.OK(c, gin.H{"items": payments})
}

// CreateDebtRecord handles POST /debts
func (h *LedgerHandler) CreateDebtRecord(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var req dto.DebtRecordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.debts.CreateRecord(c.Request.Context(), owner, req.ProductID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// PayDebtRecord handles POST /debts/:id/pay
func (h *LedgerHandler) PayDebtRecord(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.debts.PayRecord(c.Request.Context(), owner, recordID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// ListDebtRecords handles GET /debts?productId=
func (h *LedgerHandler) ListDebtRecords(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	productID, err := dto.ParseOptionalID("productId", c.Query("productId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	records, err := h.debts.ListRecords(c.Request.Context(), owner, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if records == nil {
		records = []*debt.Record{}
	}
	h.OK(c, gin.H{"items": records})
}

// ListCompanyDebts handles GET /company-debts
func (h *LedgerHandler) ListCompanyDebts(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	debts, err := h.companies.List(c.Request.Context(), owner)
	if err != nil {
		h.Error(c, err)
		return
	}
	if debts == nil {
		debts = []companydebt.CompanyDebt{}
	}
	h.OK(c, gin.H{"items": debts})
}

// CompanyDebtSummary handles GET /company-debts/summary
func (h *LedgerHandler) CompanyDebtSummary(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	summary, err := h.companies.Summary(c.Request.Context(), owner)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// PayCompanyDebt handles POST /company-debts/:id/pay
func (h *LedgerHandler) PayCompanyDebt(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	companyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.CompanyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := companydebt.ParseAllocationOrder(req.Order)
	if err != nil {
		h.Error(c, err)
		return
	}

	out, err := h.companies.Pay(c.Request.Context(), owner, companyID, req.Amount, order)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}
