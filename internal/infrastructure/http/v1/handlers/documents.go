package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/documents/receipt"
	"pharmaledger/internal/domain/documents/transaction"
	"pharmaledger/internal/infrastructure/http/v1/dto"
)

// ReceiptService records goods handed to pharmacies.
type ReceiptService interface {
	Create(ctx context.Context, owner, pharmacyID id.ID, lines []receipt.LineItem) (*receipt.Receipt, error)
	Delete(ctx context.Context, owner, receiptID id.ID) (receipt.DebtChange, error)
	UpdateStockFromReceipt(ctx context.Context, owner, pharmacyID id.ID, items []receipt.SellItem) ([]receipt.LineItem, error)
	Get(ctx context.Context, owner, receiptID id.ID) (*receipt.Receipt, error)
	List(ctx context.Context, owner id.ID, filter receipt.Filter) (domain.ListResult[*receipt.Receipt], error)
}

// TransactionService records medicine movements through pharmacies.
type TransactionService interface {
	Record(ctx context.Context, owner id.ID, in transaction.Input) (*transaction.Transaction, error)
	BulkCreate(ctx context.Context, owner, pharmacyID id.ID, items []transaction.BulkItem) (transaction.BulkResult, error)
	Get(ctx context.Context, owner, transactionID id.ID) (*transaction.Transaction, error)
	List(ctx context.Context, owner id.ID, filter transaction.Filter) (domain.ListResult[*transaction.Transaction], error)
	Summary(ctx context.Context, owner id.ID, pharmacyID *id.ID) (transaction.Summary, error)
	Archive(ctx context.Context, owner, transactionID id.ID) error
	Restore(ctx context.Context, owner, transactionID id.ID) error
}

// ReceiptHandler serves receipts and sales against them.
type ReceiptHandler struct {
	*BaseHandler
	service ReceiptService
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /receipts
func (h *ReceiptHandler) Create(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var req dto.ReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.Create(c.Request.Context(), owner, req.PharmacyID, req.Lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, r)
}

// List handles GET /receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var q dto.ReceiptListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), owner, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /receipts/:id
func (h *ReceiptHandler) Get(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	receiptID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), owner, receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// Delete handles DELETE /receipts/:id and reports the debt reversal.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	receiptID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	change, err := h.service.Delete(c.Request.Context(), owner, receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, change)
}

// Sell handles POST /receipts/sell
func (h *ReceiptHandler) Sell(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var req dto.SellRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := h.service.UpdateStockFromReceipt(c.Request.Context(), owner, req.PharmacyID, req.Products)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"lines": lines})
}

// TransactionHandler serves pharmacy transactions.
type TransactionHandler struct {
	*BaseHandler
	service TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service TransactionService) *TransactionHandler {
	return &TransactionHandler{BaseHandler: base, service: service}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var in transaction.Input
	if !h.BindJSON(c, &in) {
		return
	}

	t, err := h.service.Record(c.Request.Context(), owner, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// BulkCreate handles POST /transactions/bulk
func (h *TransactionHandler) BulkCreate(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var req dto.BulkTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.BulkCreate(c.Request.Context(), owner, req.PharmacyID, req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var q dto.TransactionListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), owner, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	transactionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), owner, transactionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Summary handles GET /transactions/summary?pharmacyId=
func (h *TransactionHandler) Summary(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	pharmacyID, err := dto.ParseOptionalID("pharmacyId", c.Query("pharmacyId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), owner, pharmacyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Archive handles DELETE /transactions/:id
func (h *TransactionHandler) Archive(c *gin.Context) {
	h.setArchived(c, true)
}

// Restore handles POST /transactions/:id/restore
func (h *TransactionHandler) Restore(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *TransactionHandler) setArchived(c *gin.Context, archived bool) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	transactionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var err error
	if archived {
		err = h.service.Archive(c.Request.Context(), owner, transactionID)
	} else {
		err = h.service.Restore(c.Request.Context(), owner, transactionID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	if archived {
		h.NoContent(c)
		return
	}
	h.Success(c, "transaction restored")
}
