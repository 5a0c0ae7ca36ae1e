package dto

import (
	"time"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/company"
	"pharmaledger/internal/domain/catalogs/hospital"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/catalogs/product"
	"pharmaledger/internal/domain/units"
)

// --- Product ---

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name            string          `json:"name" binding:"required,max=255"`
	Type            string          `json:"type" binding:"required"`
	Dosage          *string         `json:"dosage"`
	Composition     *string         `json:"composition"`
	StockQuantity   int64           `json:"stockQuantity" binding:"gte=0"`
	PillsPerPackage int64           `json:"pillsPerPackage" binding:"gte=0"`
	LoosePills      int64           `json:"loosePills" binding:"gte=0"`
	Manufacturer    *string         `json:"manufacturer"`
	PurchasePrice   types.NullMoney `json:"purchasePrice"`
	SellingPrice    types.NullMoney `json:"sellingPrice"`
}

// ToProduct builds a new product for owner.
func (r ProductRequest) ToProduct(owner id.ID) (*product.Product, error) {
	typ, err := units.ParseProductType(r.Type)
	if err != nil {
		return nil, err
	}
	p := product.NewProduct(owner, r.Name, typ)
	r.fill(p)
	return p, nil
}

// ApplyTo copies the request onto an existing product. Debt columns are
// owned by the debt ledger and left alone.
func (r ProductRequest) ApplyTo(p *product.Product) error {
	typ, err := units.ParseProductType(r.Type)
	if err != nil {
		return err
	}
	p.Name = r.Name
	p.Type = typ
	r.fill(p)
	return nil
}

func (r ProductRequest) fill(p *product.Product) {
	p.Dosage = r.Dosage
	p.Composition = r.Composition
	p.StockQuantity = r.StockQuantity
	if r.PillsPerPackage > 0 {
		p.PillsPerPackage = r.PillsPerPackage
	}
	p.LoosePills = r.LoosePills
	p.Manufacturer = r.Manufacturer
	p.PurchasePrice = r.PurchasePrice
	p.SellingPrice = r.SellingPrice
}

// --- Pharmacy ---

// PharmacyRequest creates or replaces a pharmacy.
type PharmacyRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Address *string `json:"address"`
	Phone   string  `json:"phone" binding:"max=20"`
	Manager string  `json:"manager" binding:"max=255"`
}

// ToPharmacy builds a new pharmacy for owner.
func (r PharmacyRequest) ToPharmacy(owner id.ID) (*pharmacy.Pharmacy, error) {
	p := pharmacy.NewPharmacy(owner, r.Name)
	return p, r.ApplyTo(p)
}

// ApplyTo copies the request onto an existing pharmacy.
func (r PharmacyRequest) ApplyTo(p *pharmacy.Pharmacy) error {
	p.Name = r.Name
	p.Address = r.Address
	p.Phone = r.Phone
	p.Manager = r.Manager
	return nil
}

// --- Medicine ---

// MedicineRequest creates or replaces a medicine.
type MedicineRequest struct {
	Name            string          `json:"name" binding:"required,max=255"`
	Dosage          *string         `json:"dosage"`
	PillsPerPackage int64           `json:"pillsPerPackage" binding:"required,gt=0"`
	PricePerPackage types.NullMoney `json:"pricePerPackage"`
	PricePerPill    types.NullMoney `json:"pricePerPill"`
	PriceType       string          `json:"priceType"`
	Manufacturer    *string         `json:"manufacturer"`
	ExpiryDate      *time.Time      `json:"expiryDate"`
	StockQuantity   int64           `json:"stockQuantity" binding:"gte=0"`
}

// ToMedicine builds a new medicine for owner.
func (r MedicineRequest) ToMedicine(owner id.ID) (*medicine.Medicine, error) {
	m := medicine.NewMedicine(owner, r.Name, r.PillsPerPackage)
	return m, r.ApplyTo(m)
}

// ApplyTo copies the request onto an existing medicine. Sold and given
// counters are owned by the transaction recorder.
func (r MedicineRequest) ApplyTo(m *medicine.Medicine) error {
	priceType, err := units.ParsePriceType(r.PriceType)
	if err != nil {
		return err
	}
	m.Name = r.Name
	m.Dosage = r.Dosage
	m.PillsPerPackage = r.PillsPerPackage
	m.PricePerPackage = r.PricePerPackage
	m.PricePerPill = r.PricePerPill
	m.PriceType = priceType
	m.Manufacturer = r.Manufacturer
	m.ExpiryDate = r.ExpiryDate
	m.StockQuantity = r.StockQuantity
	return nil
}

// --- Company ---

// CompanyRequest creates or replaces a company.
type CompanyRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	OwnerName *string `json:"ownerName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// ToCompany builds a new company. Companies are shared, owner is unused.
func (r CompanyRequest) ToCompany(id.ID) (*company.Company, error) {
	c := company.NewCompany(r.Name)
	return c, r.ApplyTo(c)
}

// ApplyTo copies the request onto an existing company.
func (r CompanyRequest) ApplyTo(c *company.Company) error {
	c.Name = r.Name
	c.OwnerName = r.OwnerName
	c.Phone = r.Phone
	c.Address = r.Address
	return nil
}

// --- Hospital ---

// HospitalRequest creates or replaces a hospital.
type HospitalRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address"`
	Manager string `json:"manager" binding:"max=255"`
}

// ToHospital builds a new hospital for owner.
func (r HospitalRequest) ToHospital(owner id.ID) (*hospital.Hospital, error) {
	h := hospital.NewHospital(owner, r.Name)
	return h, r.ApplyTo(h)
}

// ApplyTo copies the request onto an existing hospital.
func (r HospitalRequest) ApplyTo(h *hospital.Hospital) error {
	h.Name = r.Name
	h.Address = r.Address
	h.Manager = r.Manager
	return nil
}

// DoctorRequest creates or replaces a doctor.
type DoctorRequest struct {
	HospitalID id.ID                    `json:"hospitalId" binding:"required"`
	Name       string                   `json:"name" binding:"required,max=255"`
	Specialty  string                   `json:"specialty" binding:"max=255"`
	Phone      string                   `json:"phone" binding:"max=20"`
	IsActive   *bool                    `json:"isActive"`
	Products   []hospital.DoctorProduct `json:"products"`
	Pharmacies []id.ID                  `json:"pharmacies"`
}

// ToDoctor builds a new doctor for owner.
func (r DoctorRequest) ToDoctor(owner id.ID) (*hospital.Doctor, error) {
	d := hospital.NewDoctor(owner, r.HospitalID, r.Name)
	return d, r.ApplyTo(d)
}

// ApplyTo copies the request onto an existing doctor. Line items are
// validated by the doctor entity itself.
func (r DoctorRequest) ApplyTo(d *hospital.Doctor) error {
	d.HospitalID = r.HospitalID
	d.Name = r.Name
	d.Specialty = r.Specialty
	d.Phone = r.Phone
	if r.IsActive != nil {
		d.IsActive = *r.IsActive
	}
	if r.Products != nil {
		d.Products = r.Products
	}
	if r.Pharmacies != nil {
		d.Pharmacies = r.Pharmacies
	}
	return nil
}
