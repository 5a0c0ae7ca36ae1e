package catalog_repo

import (
	"pharmaledger/internal/domain/catalogs/hospital"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const (
	hospitalTable = "cat_hospitals"
	doctorTable   = "cat_doctors"
)

// HospitalRepo implements hospital.Repository.
type HospitalRepo struct {
	*BaseCatalogRepo[*hospital.Hospital]
}

var _ hospital.Repository = (*HospitalRepo)(nil)

// NewHospitalRepo creates a new hospital repository.
func NewHospitalRepo(txm *postgres.TxManager) *HospitalRepo {
	return &HospitalRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, hospitalTable, "hospital",
			postgres.ExtractDBColumns[hospital.Hospital](),
			func() *hospital.Hospital { return &hospital.Hospital{} },
		),
	}
}

// DoctorRepo implements hospital.DoctorRepository. Products and pharmacies
// are JSONB columns.
type DoctorRepo struct {
	*BaseCatalogRepo[*hospital.Doctor]
}

var _ hospital.DoctorRepository = (*DoctorRepo)(nil)

// NewDoctorRepo creates a new doctor repository.
func NewDoctorRepo(txm *postgres.TxManager) *DoctorRepo {
	return &DoctorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, doctorTable, "doctor",
			postgres.ExtractDBColumns[hospital.Doctor](),
			func() *hospital.Doctor { return &hospital.Doctor{} },
		).WithParentColumn("hospital_id"),
	}
}
