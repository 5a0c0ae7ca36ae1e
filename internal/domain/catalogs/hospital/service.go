package hospital

import (
	"context"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain"
)

// Service provides CRUD for hospitals.
type Service struct {
	*domain.CatalogService[*Hospital]
}

// NewService creates a new Hospital service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Hospital]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "hospital",
	})
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, h *Hospital) error {
		h.Touch()
		return nil
	})
	return &Service{CatalogService: base}
}

// DoctorService provides CRUD for doctors. A doctor can only be attached to
// a hospital of the same owner.
type DoctorService struct {
	*domain.CatalogService[*Doctor]
	hospitals *Service
}

// NewDoctorService creates a new Doctor service.
func NewDoctorService(repo DoctorRepository, hospitals *Service, txm tx.Manager) *DoctorService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Doctor]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "doctor",
	})
	svc := &DoctorService{CatalogService: base, hospitals: hospitals}
	base.Hooks().OnBeforeCreate(svc.checkHospital)
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, d *Doctor) error {
		d.Touch()
		return svc.checkHospital(ctx, d)
	})
	return svc
}

func (s *DoctorService) checkHospital(ctx context.Context, d *Doctor) error {
	_, err := s.hospitals.Get(ctx, d.OwnerID, d.HospitalID)
	return err
}

// ListByHospital lists the doctors of one hospital.
func (s *DoctorService) ListByHospital(ctx context.Context, owner, hospitalID id.ID, filter domain.ListFilter) (domain.ListResult[*Doctor], error) {
	if _, err := s.hospitals.Get(ctx, owner, hospitalID); err != nil {
		return domain.ListResult[*Doctor]{}, err
	}
	filter.ParentID = &hospitalID
	return s.List(ctx, owner, filter)
}
