package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pharmaledger/internal/domain/catalogs/company"
	"pharmaledger/internal/domain/registers/companydebt"
	"pharmaledger/internal/infrastructure/storage/postgres"
)

const companyTable = "cat_companies"

// CompanyRepo implements company.Repository. Companies are shared by all
// owners, so no owner filter applies.
type CompanyRepo struct {
	*BaseCatalogRepo[*company.Company]
}

var (
	_ company.Repository            = (*CompanyRepo)(nil)
	_ companydebt.CompanyRepository = (*CompanyRepo)(nil)
)

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo(txm *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, companyTable, "company",
			postgres.ExtractDBColumns[company.Company](),
			func() *company.Company { return &company.Company{} },
		),
	}
}

// ListActive returns every non-archived company by name.
func (r *CompanyRepo) ListActive(ctx context.Context) ([]*company.Company, error) {
	return r.FindMany(ctx, r.baseSelect().
		Where(squirrel.Eq{"archived": false}).
		OrderBy("name"))
}
