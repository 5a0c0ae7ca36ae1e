package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/units"
)

type fakeReports struct {
	stats    PharmacyStatistics
	stock    []PharmacyStock
	stockErr error
}

func (f *fakeReports) PharmacyStatistics(_ context.Context, _, pharmacyID id.ID) (PharmacyStatistics, error) {
	s := f.stats
	s.PharmacyID = pharmacyID
	return s, nil
}

func (f *fakeReports) PharmacyStock(_ context.Context, _, _ id.ID, medicineID *id.ID) ([]PharmacyStock, error) {
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	var out []PharmacyStock
	for _, row := range f.stock {
		if medicineID == nil || row.MedicineID == *medicineID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakePharmacies map[id.ID]*pharmacy.Pharmacy

func (f fakePharmacies) GetByID(_ context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	p, ok := f[pharmacyID]
	if !ok {
		return nil, apperror.NewNotFound("pharmacies", pharmacyID.String())
	}
	return p, nil
}

type fakeMedicines []*medicine.Medicine

func (f fakeMedicines) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[*medicine.Medicine], error) {
	var out []*medicine.Medicine
	for _, m := range f {
		if filter.OwnerID == nil || m.OwnerID == *filter.OwnerID {
			out = append(out, m)
		}
	}
	return domain.ListResult[*medicine.Medicine]{Items: out, TotalCount: int64(len(out))}, nil
}

type fixedPayments string

func (f fixedPayments) SumActivePayments(context.Context, id.ID) (types.Money, error) {
	return types.MustMoney(string(f)), nil
}

func TestPharmacyRemainingClampsAtZero(t *testing.T) {
	owner := id.New()
	ph := pharmacy.NewPharmacy(owner, "Apteka")
	a, b := id.New(), id.New()
	repo := &fakeReports{stock: []PharmacyStock{
		{MedicineID: a, MedicineName: "A", Given: 50, Sold: 20},
		{MedicineID: b, MedicineName: "B", Given: 5, Sold: 9},
	}}
	svc := NewService(repo, fakePharmacies{ph.ID: ph}, nil, fixedPayments("0"))

	rows, err := svc.PharmacyRemaining(context.Background(), owner, ph.ID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(30), rows[0].Remaining)
	assert.Equal(t, int64(0), rows[1].Remaining)

	rows, err = svc.PharmacyRemaining(context.Background(), owner, ph.ID, &b)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = svc.PharmacyRemaining(context.Background(), id.New(), ph.ID, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPharmacyOverview(t *testing.T) {
	owner := id.New()
	ph := pharmacy.NewPharmacy(owner, "Apteka")
	repo := &fakeReports{
		stats: PharmacyStatistics{TotalAmount: types.MustMoney("42"), TotalTransactions: 3, TotalMedicines: 2},
		stock: []PharmacyStock{{MedicineID: id.New(), Given: 4, Sold: 1}},
	}
	svc := NewService(repo, fakePharmacies{ph.ID: ph}, nil, fixedPayments("12.5"))

	out, err := svc.PharmacyOverview(context.Background(), owner, ph.ID)
	require.NoError(t, err)
	assert.Equal(t, ph.ID, out.Statistics.PharmacyID)
	assert.Equal(t, int64(3), out.Statistics.TotalTransactions)
	assert.Equal(t, int64(3), out.Stock[0].Remaining)
	assert.True(t, types.MustMoney("12.5").Equal(out.PaidAmount))

	repo.stockErr = errors.New("boom")
	_, err = svc.PharmacyOverview(context.Background(), owner, ph.ID)
	assert.Error(t, err)
}

func TestMedicineBalance(t *testing.T) {
	owner := id.New()
	m1 := medicine.NewMedicine(owner, "Citramon", 10)
	m1.PricePerPackage = types.Some(types.MustMoney("20"))
	m1.StockQuantity, m1.SoldQuantity, m1.GivenQuantity = 100, 30, 20

	m2 := medicine.NewMedicine(owner, "Nimesil", 1)
	m2.PriceType = units.PricePerPill
	m2.PricePerPill = types.Some(types.MustMoney("3"))
	m2.StockQuantity, m2.SoldQuantity = 10, 15

	other := medicine.NewMedicine(id.New(), "Foreign", 1)
	other.StockQuantity = 1000

	svc := NewService(&fakeReports{}, fakePharmacies{}, fakeMedicines{m1, m2, other}, fixedPayments("0"))

	report, err := svc.MedicineBalance(context.Background(), owner, MedicineBalanceFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalItems)
	assert.Equal(t, int64(50), report.Items[0].Remaining)
	assert.True(t, types.MustMoney("100").Equal(report.Items[0].RemainingValue))
	assert.Equal(t, int64(0), report.Items[1].Remaining)
	assert.Equal(t, int64(50), report.TotalRemaining)
	assert.True(t, types.MustMoney("100").Equal(report.TotalValue))

	report, err = svc.MedicineBalance(context.Background(), owner, MedicineBalanceFilter{ExcludeZero: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalItems)
}
