package handlers

import (
	"github.com/gin-gonic/gin"

	"pharmaledger/internal/domain/catalogs/company"
	"pharmaledger/internal/domain/catalogs/hospital"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/catalogs/product"
	"pharmaledger/internal/domain/notes"
	"pharmaledger/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog.
type ProductHandler = CatalogHandler[*product.Product, dto.ProductRequest]

// NewProductHandler creates the product catalog handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.ProductRequest]{
		Service:    service,
		EntityName: "product",
		NewEntity:  dto.ProductRequest.ToProduct,
		Apply:      dto.ProductRequest.ApplyTo,
	})
}

// PharmacyHandler serves the pharmacy catalog.
type PharmacyHandler = CatalogHandler[*pharmacy.Pharmacy, dto.PharmacyRequest]

// NewPharmacyHandler creates the pharmacy catalog handler.
func NewPharmacyHandler(base *BaseHandler, service *pharmacy.Service) *PharmacyHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*pharmacy.Pharmacy, dto.PharmacyRequest]{
		Service:    service,
		EntityName: "pharmacy",
		NewEntity:  dto.PharmacyRequest.ToPharmacy,
		Apply:      dto.PharmacyRequest.ApplyTo,
	})
}

// CompanyHandler serves the shared company catalog.
type CompanyHandler = CatalogHandler[*company.Company, dto.CompanyRequest]

// NewCompanyHandler creates the company catalog handler.
func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*company.Company, dto.CompanyRequest]{
		Service:    service,
		EntityName: "company",
		NewEntity:  dto.CompanyRequest.ToCompany,
		Apply:      dto.CompanyRequest.ApplyTo,
	})
}

// HospitalHandler serves the hospital catalog.
type HospitalHandler = CatalogHandler[*hospital.Hospital, dto.HospitalRequest]

// NewHospitalHandler creates the hospital catalog handler.
func NewHospitalHandler(base *BaseHandler, service *hospital.Service) *HospitalHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*hospital.Hospital, dto.HospitalRequest]{
		Service:    service,
		EntityName: "hospital",
		NewEntity:  dto.HospitalRequest.ToHospital,
		Apply:      dto.HospitalRequest.ApplyTo,
	})
}

// MedicineHandler serves the medicine catalog plus its valuation.
type MedicineHandler struct {
	*CatalogHandler[*medicine.Medicine, dto.MedicineRequest]
	service *medicine.Service
}

// NewMedicineHandler creates the medicine catalog handler.
func NewMedicineHandler(base *BaseHandler, service *medicine.Service) *MedicineHandler {
	return &MedicineHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*medicine.Medicine, dto.MedicineRequest]{
			Service:    service,
			EntityName: "medicine",
			NewEntity:  dto.MedicineRequest.ToMedicine,
			Apply:      dto.MedicineRequest.ApplyTo,
		}),
		service: service,
	}
}

// Valuation handles GET /medicines/:id/valuation
func (h *MedicineHandler) Valuation(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	medicineID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	v, err := h.service.Valuate(c.Request.Context(), owner, medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// DoctorHandler serves doctors, standalone and per hospital.
type DoctorHandler struct {
	*CatalogHandler[*hospital.Doctor, dto.DoctorRequest]
	service *hospital.DoctorService
}

// NewDoctorHandler creates the doctor handler.
func NewDoctorHandler(base *BaseHandler, service *hospital.DoctorService) *DoctorHandler {
	return &DoctorHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*hospital.Doctor, dto.DoctorRequest]{
			Service:    service,
			EntityName: "doctor",
			NewEntity:  dto.DoctorRequest.ToDoctor,
			Apply:      dto.DoctorRequest.ApplyTo,
		}),
		service: service,
	}
}

// ListByHospital handles GET /hospitals/:id/doctors
func (h *DoctorHandler) ListByHospital(c *gin.Context) {
	owner, ok := h.Owner(c)
	if !ok {
		return
	}
	hospitalID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.ListByHospital(c.Request.Context(), owner, hospitalID, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// NoteHandler serves the owner's notes.
type NoteHandler = CatalogHandler[*notes.Note, dto.NoteRequest]

// NewNoteHandler creates the notes handler.
func NewNoteHandler(base *BaseHandler, service *notes.Service) *NoteHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*notes.Note, dto.NoteRequest]{
		Service:    service,
		EntityName: "note",
		NewEntity:  dto.NoteRequest.ToNote,
		Apply:      dto.NoteRequest.ApplyTo,
	})
}
