package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/domain/reports"
	"pharmaledger/internal/infrastructure/http/v1/dto"
)

// ReportService builds read-only pharmacy and medicine reports.
type ReportService interface {
	PharmacyStatistics(ctx context.Context, owner, pharmacyID id.ID) (reports.PharmacyStatistics, error)
	PharmacyRemaining(ctx context.Context, owner, pharmacyID id.ID, medicineID *id.ID) ([]reports.PharmacyStock, error)
	PharmacyOverview(ctx context.Context, owner, pharmacyID id.ID) (*reports.PharmacyOverview, error)
	MedicineBalance(ctx context.Context, owner id.ID, filter reports.MedicineBalanceFilter) (*reports.MedicineBalanceReport, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// PharmacyStatistics handles GET /reports/pharmacies/:id/statistics
func (h *ReportsHandler) PharmacyStatistics(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	pharmacyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	stats, err := h.service.PharmacyStatistics(c.Request.Context(), owner, pharmacyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// PharmacyRemaining handles GET /reports/pharmacies/:id/remaining?medicineId=
func (h *ReportsHandler) PharmacyRemaining(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	pharmacyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	medicineID, err := dto.ParseOptionalID("medicineId", c.Query("medicineId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	stock, err := h.service.PharmacyRemaining(c.Request.Context(), owner, pharmacyID, medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if stock == nil {
		stock = []reports.PharmacyStock{}
	}
	h.OK(c, gin.H{"items": stock})
}

// PharmacyOverview handles GET /reports/pharmacies/:id/overview
func (h *ReportsHandler) PharmacyOverview(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	pharmacyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	overview, err := h.service.PharmacyOverview(c.Request.Context(), owner, pharmacyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, overview)
}

// MedicineBalance handles GET /reports/medicine-balance
func (h *ReportsHandler) MedicineBalance(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}

	var q dto.MedicineBalanceQuery
	if !h.BindQuery(c, &q) {
		return
	}

	report, err := h.service.MedicineBalance(c.Request.Context(), owner, reports.MedicineBalanceFilter{
		Search:      q.Search,
		ExcludeZero: q.ExcludeZero,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
