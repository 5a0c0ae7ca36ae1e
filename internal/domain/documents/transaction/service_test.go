package transaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/medicine"
	"pharmaledger/internal/domain/catalogs/pharmacy"
	"pharmaledger/internal/domain/units"
)

type store struct {
	transactions map[id.ID]*Transaction
	medicines    map[id.ID]medicine.Medicine
	pharmacies   map[id.ID]pharmacy.Pharmacy
}

func (s *store) Create(_ context.Context, t *Transaction) error {
	s.transactions[t.ID] = t
	return nil
}

func (s *store) GetByID(_ context.Context, transactionID id.ID) (*Transaction, error) {
	t, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperror.NewNotFound("transactions", transactionID.String())
	}
	return t, nil
}

func (s *store) SetArchived(_ context.Context, transactionID id.ID, archived bool) error {
	s.transactions[transactionID].Archived = archived
	return nil
}

func (s *store) List(_ context.Context, f Filter) (domain.ListResult[*Transaction], error) {
	var out []*Transaction
	for _, t := range s.transactions {
		if f.OwnerID != nil && t.OwnerID != *f.OwnerID {
			continue
		}
		out = append(out, t)
	}
	return domain.ListResult[*Transaction]{Items: out, TotalCount: int64(len(out))}, nil
}

func (s *store) Summarize(_ context.Context, owner id.ID, pharmacyID *id.ID) (Summary, error) {
	sum := Summary{TotalAmount: types.Zero()}
	for _, t := range s.transactions {
		if t.OwnerID != owner || t.Archived || (pharmacyID != nil && t.PharmacyID != *pharmacyID) {
			continue
		}
		sum.TotalAmount = sum.TotalAmount.Add(t.TotalPrice)
		sum.TotalTransactions++
		sum.TotalMedicines += t.QuantityPills
	}
	return sum, nil
}

type medicineRepo struct{ s *store }

func (r medicineRepo) GetForUpdate(_ context.Context, medicineID id.ID) (*medicine.Medicine, error) {
	m, ok := r.s.medicines[medicineID]
	if !ok {
		return nil, apperror.NewNotFound("medicines", medicineID.String())
	}
	return &m, nil
}

func (r medicineRepo) SaveCounters(_ context.Context, m *medicine.Medicine) error {
	r.s.medicines[m.ID] = *m
	return nil
}

type pharmacyRepo struct{ s *store }

func (r pharmacyRepo) GetByID(_ context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	p, ok := r.s.pharmacies[pharmacyID]
	if !ok {
		return nil, apperror.NewNotFound("pharmacies", pharmacyID.String())
	}
	return &p, nil
}

type fixture struct {
	svc      *Service
	store    *store
	owner    id.ID
	pharmacy id.ID
	medicine id.ID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	owner := id.New()
	st := &store{
		transactions: map[id.ID]*Transaction{},
		medicines:    map[id.ID]medicine.Medicine{},
		pharmacies:   map[id.ID]pharmacy.Pharmacy{},
	}

	ph := pharmacy.NewPharmacy(owner, "Dorixona")
	st.pharmacies[ph.ID] = *ph

	m := medicine.NewMedicine(owner, "Analgin", 10)
	m.PriceType = units.PricePerPill
	m.PricePerPill = types.Some(types.MustMoney("1.50"))
	m.StockQuantity = 1000
	st.medicines[m.ID] = *m

	return fixture{
		svc:      NewService(st, medicineRepo{st}, pharmacyRepo{st}, &tx.MockManager{}, nil),
		store:    st,
		owner:    owner,
		pharmacy: ph.ID,
		medicine: m.ID,
	}
}

func TestRecordGivenAndSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	given, err := f.svc.Record(ctx, f.owner, Input{
		PharmacyID: f.pharmacy, MedicineID: f.medicine,
		QuantityPills: 10, QuantityPackages: 3, Type: TypeGiven,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), given.TotalUnits())
	assert.True(t, types.MustMoney("1.5").Equal(given.PricePerUnit))
	assert.True(t, types.MustMoney("45").Equal(given.TotalPrice))

	_, err = f.svc.Record(ctx, f.owner, Input{
		PharmacyID: f.pharmacy, MedicineID: f.medicine,
		QuantityPills: 4, QuantityPackages: 2, Type: TypeSold,
	})
	require.NoError(t, err)

	m := f.store.medicines[f.medicine]
	assert.Equal(t, int64(30), m.GivenQuantity)
	assert.Equal(t, int64(8), m.SoldQuantity)
	assert.Len(t, f.store.transactions, 2)
}

func TestRecordReturnedClampsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, f.owner, Input{
		PharmacyID: f.pharmacy, MedicineID: f.medicine,
		QuantityPills: 5, QuantityPackages: 1, Type: TypeSold,
	})
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, f.owner, Input{
		PharmacyID: f.pharmacy, MedicineID: f.medicine,
		QuantityPills: 20, QuantityPackages: 1, Type: TypeReturned,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.store.medicines[f.medicine].SoldQuantity)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, f.owner, Input{PharmacyID: f.pharmacy, MedicineID: f.medicine, Type: "lost"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.Record(ctx, id.New(), Input{
		PharmacyID: f.pharmacy, MedicineID: f.medicine,
		QuantityPills: 1, QuantityPackages: 1, Type: TypeGiven,
	})
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.store.transactions)
}

func TestZeroQuantitiesAreValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []Input{
		{PharmacyID: f.pharmacy, MedicineID: f.medicine, QuantityPills: 0, QuantityPackages: 3, Type: TypeGiven},
		{PharmacyID: f.pharmacy, MedicineID: f.medicine, QuantityPills: 3, QuantityPackages: 0, Type: TypeSold},
	} {
		_, err := f.svc.Record(ctx, f.owner, in)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	}

	_, err := f.svc.BulkCreate(ctx, f.owner, f.pharmacy, []BulkItem{
		{MedicineID: f.medicine, QuantityPills: 1, QuantityPackages: 1},
		{MedicineID: f.medicine, QuantityPills: 0, QuantityPackages: 1},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details["lines"], "2")

	assert.Empty(t, f.store.transactions)
	m := f.store.medicines[f.medicine]
	assert.Zero(t, m.GivenQuantity)
	assert.Zero(t, m.SoldQuantity)
}

func TestBulkCreateSkipsUnknownMedicines(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.BulkCreate(context.Background(), f.owner, f.pharmacy, []BulkItem{
		{MedicineID: f.medicine, QuantityPills: 2, QuantityPackages: 5},
		{MedicineID: id.New(), QuantityPills: 1, QuantityPackages: 1},
		{MedicineID: f.medicine, QuantityPills: 1, QuantityPackages: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Len(t, res.IDs, 2)

	for _, txID := range res.IDs {
		assert.Equal(t, TypeGiven, f.store.transactions[txID].Type)
	}
	assert.Equal(t, int64(11), f.store.medicines[f.medicine].GivenQuantity)
}

func TestBulkCreateFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BulkCreate(ctx, f.owner, id.New(), []BulkItem{{MedicineID: f.medicine, QuantityPills: 1, QuantityPackages: 1}})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.BulkCreate(ctx, f.owner, f.pharmacy, []BulkItem{
		{MedicineID: f.medicine, QuantityPills: 1, QuantityPackages: 1},
		{QuantityPills: 1, QuantityPackages: 1},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details["lines"], "2")
	assert.Empty(t, f.store.transactions)
}

func TestArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr, err := f.svc.Record(ctx, f.owner, Input{
		PharmacyID: f.pharmacy, MedicineID: f.medicine,
		QuantityPills: 1, QuantityPackages: 1, Type: TypeGiven,
	})
	require.NoError(t, err)

	assert.True(t, apperror.IsNotFound(f.svc.Archive(ctx, id.New(), tr.ID)))
	require.NoError(t, f.svc.Archive(ctx, f.owner, tr.ID))
	assert.True(t, f.store.transactions[tr.ID].Archived)

	sum, err := f.svc.Summary(ctx, f.owner, nil)
	require.NoError(t, err)
	assert.Zero(t, sum.TotalTransactions)

	require.NoError(t, f.svc.Restore(ctx, f.owner, tr.ID))
	sum, err = f.svc.Summary(ctx, f.owner, &f.pharmacy)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.TotalTransactions)
	assert.True(t, types.MustMoney("1.5").Equal(sum.TotalAmount))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("returned")
	require.NoError(t, err)
	assert.Equal(t, TypeReturned, typ)

	_, err = ParseType("sale")
	assert.Error(t, err)
}
