package receipt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/catalogs/pharmacy"
)

type store struct {
	receipts   map[id.ID]Receipt
	pharmacies map[id.ID]pharmacy.Pharmacy
	payments   map[id.ID][]types.Money
	events     []domain.Event
}

func newStore() *store {
	return &store{
		receipts:   map[id.ID]Receipt{},
		pharmacies: map[id.ID]pharmacy.Pharmacy{},
		payments:   map[id.ID][]types.Money{},
	}
}

func clone(r Receipt) *Receipt {
	r.Lines = append([]LineItem(nil), r.Lines...)
	return &r
}

func (s *store) Create(_ context.Context, r *Receipt) error {
	s.receipts[r.ID] = *clone(*r)
	return nil
}

func (s *store) GetByID(_ context.Context, receiptID id.ID) (*Receipt, error) {
	r, ok := s.receipts[receiptID]
	if !ok {
		return nil, apperror.NewNotFound("receipts", receiptID.String())
	}
	return clone(r), nil
}

func (s *store) GetForUpdate(ctx context.Context, receiptID id.ID) (*Receipt, error) {
	return s.GetByID(ctx, receiptID)
}

func (s *store) LatestForUpdate(_ context.Context, pharmacyID id.ID) (*Receipt, error) {
	var latest *Receipt
	for _, r := range s.receipts {
		if r.PharmacyID != pharmacyID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = clone(r)
		}
	}
	if latest == nil {
		return nil, apperror.NewNotFound("receipts", pharmacyID.String())
	}
	return latest, nil
}

func (s *store) SaveLines(_ context.Context, r *Receipt) error {
	s.receipts[r.ID] = *clone(*r)
	return nil
}

func (s *store) Delete(_ context.Context, receiptID id.ID) error {
	delete(s.receipts, receiptID)
	return nil
}

func (s *store) List(_ context.Context, f Filter) (domain.ListResult[*Receipt], error) {
	var out []*Receipt
	for _, r := range s.receipts {
		if f.PharmacyID != nil && r.PharmacyID != *f.PharmacyID {
			continue
		}
		out = append(out, clone(r))
	}
	return domain.ListResult[*Receipt]{Items: out, TotalCount: int64(len(out))}, nil
}

func (s *store) SumActivePayments(_ context.Context, pharmacyID id.ID) (types.Money, error) {
	sum := types.Zero()
	for _, p := range s.payments[pharmacyID] {
		sum = sum.Add(p)
	}
	return sum, nil
}

func (s *store) Publish(_ context.Context, e domain.Event) error {
	s.events = append(s.events, e)
	return nil
}

type pharmacyRepo struct{ s *store }

func (r pharmacyRepo) GetForUpdate(_ context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	p, ok := r.s.pharmacies[pharmacyID]
	if !ok {
		return nil, apperror.NewNotFound("pharmacies", pharmacyID.String())
	}
	return &p, nil
}

func (r pharmacyRepo) SaveDebt(_ context.Context, p *pharmacy.Pharmacy) error {
	r.s.pharmacies[p.ID] = *p
	return nil
}

type fixture struct {
	svc      *Service
	store    *store
	owner    id.ID
	pharmacy id.ID
}

func newFixture(t *testing.T, totalDebt, remainingDebt string) fixture {
	t.Helper()
	owner := id.New()
	st := newStore()
	ph := pharmacy.NewPharmacy(owner, "Navoiy")
	ph.TotalDebt = types.MustMoney(totalDebt)
	ph.RemainingDebt = types.MustMoney(remainingDebt)
	st.pharmacies[ph.ID] = *ph

	svc := NewService(Deps{
		Receipts:   st,
		Pharmacies: pharmacyRepo{st},
		Payments:   st,
		TxManager:  &tx.MockManager{},
		Events:     st,
	})
	return fixture{svc: svc, store: st, owner: owner, pharmacy: ph.ID}
}

func (f fixture) debt() (types.Money, types.Money) {
	ph := f.store.pharmacies[f.pharmacy]
	return ph.TotalDebt, ph.RemainingDebt
}

func line(price string, count int64) LineItem {
	return LineItem{ProductID: id.New(), Name: "item", Count: count, SellingPrice: types.MustMoney(price)}
}

func TestCreateAddsDebt(t *testing.T) {
	f := newFixture(t, "100", "40")

	r, err := f.svc.Create(context.Background(), f.owner, f.pharmacy, []LineItem{line("5", 10), line("2.5", 4)})
	require.NoError(t, err)

	assert.True(t, types.MustMoney("60").Equal(r.TotalPrice))
	assert.Equal(t, int64(14), r.TotalCount)
	assert.True(t, types.MustMoney("50").Equal(r.Lines[0].Total))

	total, remaining := f.debt()
	assert.True(t, types.MustMoney("160").Equal(total))
	assert.True(t, types.MustMoney("100").Equal(remaining))

	require.Len(t, f.store.events, 1)
	assert.Equal(t, EventReceiptCreated, f.store.events[0].EventType)
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	f := newFixture(t, "200", "200")
	ctx := context.Background()

	r, err := f.svc.Create(ctx, f.owner, f.pharmacy, []LineItem{line("7", 3)})
	require.NoError(t, err)

	change, err := f.svc.Delete(ctx, f.owner, r.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("21").Equal(change.Amount))

	total, remaining := f.debt()
	assert.True(t, types.MustMoney("200").Equal(total))
	assert.True(t, types.MustMoney("200").Equal(remaining))
	assert.Empty(t, f.store.receipts)
}

func TestDeleteZeroTotalRecomputesFromLines(t *testing.T) {
	f := newFixture(t, "120", "120")
	r := NewReceipt(f.owner, f.pharmacy, []LineItem{line("5", 10)})
	r.TotalPrice = types.Zero()
	f.store.receipts[r.ID] = *r

	change, err := f.svc.Delete(context.Background(), f.owner, r.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("50").Equal(change.Amount))

	total, remaining := f.debt()
	assert.True(t, types.MustMoney("70").Equal(total))
	assert.True(t, types.MustMoney("70").Equal(remaining))
}

func TestDeleteAnchorsRemainingToPayments(t *testing.T) {
	f := newFixture(t, "1000", "700")
	f.store.payments[f.pharmacy] = []types.Money{types.MustMoney("300")}
	r := NewReceipt(f.owner, f.pharmacy, []LineItem{line("100", 10)})
	f.store.receipts[r.ID] = *r

	_, err := f.svc.Delete(context.Background(), f.owner, r.ID)
	require.NoError(t, err)

	total, remaining := f.debt()
	assert.True(t, total.IsZero())
	assert.True(t, remaining.IsZero())
}

func TestDeleteForeignReceipt(t *testing.T) {
	f := newFixture(t, "50", "50")
	r := NewReceipt(f.owner, f.pharmacy, []LineItem{line("5", 10)})
	f.store.receipts[r.ID] = *r

	_, err := f.svc.Delete(context.Background(), id.New(), r.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Len(t, f.store.receipts, 1)

	total, _ := f.debt()
	assert.True(t, types.MustMoney("50").Equal(total))
}

func TestCreateValidatesEveryLine(t *testing.T) {
	f := newFixture(t, "0", "0")

	_, err := f.svc.Create(context.Background(), f.owner, f.pharmacy, []LineItem{
		line("1", 1),
		{Name: "no product", Count: 1, SellingPrice: types.MustMoney("1")},
		{ProductID: id.New(), Count: 0, SellingPrice: types.MustMoney("1")},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	lines, ok := appErr.Details["lines"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines, "2")
	assert.Contains(t, lines, "3")

	_, err = f.svc.Create(context.Background(), f.owner, f.pharmacy, []LineItem{line("-1", 1)})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.Create(context.Background(), f.owner, f.pharmacy, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, f.store.receipts)
}

func TestUpdateStockFromLatestReceipt(t *testing.T) {
	f := newFixture(t, "0", "0")
	ctx := context.Background()

	older := NewReceipt(f.owner, f.pharmacy, []LineItem{line("1", 100)})
	older.CreatedAt = time.Now().Add(-time.Hour)
	f.store.receipts[older.ID] = *older

	a, b := line("2", 10), line("3", 5)
	latest := NewReceipt(f.owner, f.pharmacy, []LineItem{a, b})
	f.store.receipts[latest.ID] = *latest

	updated, err := f.svc.UpdateStockFromReceipt(ctx, f.owner, f.pharmacy, []SellItem{
		{ProductID: a.ProductID, Quantity: 4},
		{ProductID: b.ProductID, Quantity: 5},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, int64(6), updated[0].Count)
	assert.Equal(t, int64(0), updated[1].Count)

	stored := f.store.receipts[latest.ID]
	assert.Equal(t, int64(6), stored.Lines[0].Count)
	assert.Equal(t, int64(0), stored.Lines[1].Count)
	assert.Equal(t, int64(15), stored.TotalCount)
	assert.True(t, types.MustMoney("35").Equal(stored.TotalPrice))
	assert.True(t, types.MustMoney("20").Equal(stored.Lines[0].Total))
	assert.Equal(t, int64(100), f.store.receipts[older.ID].TotalCount)
}

func TestDeleteAfterSaleReversesIssuedAmount(t *testing.T) {
	f := newFixture(t, "0", "0")
	ctx := context.Background()

	item := line("10", 10)
	r, err := f.svc.Create(ctx, f.owner, f.pharmacy, []LineItem{item})
	require.NoError(t, err)

	total, remaining := f.debt()
	require.True(t, types.MustMoney("100").Equal(total))
	require.True(t, types.MustMoney("100").Equal(remaining))

	_, err = f.svc.UpdateStockFromReceipt(ctx, f.owner, f.pharmacy, []SellItem{
		{ProductID: item.ProductID, Quantity: 6},
	})
	require.NoError(t, err)

	change, err := f.svc.Delete(ctx, f.owner, r.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("100").Equal(change.Amount))

	total, remaining = f.debt()
	assert.True(t, total.IsZero())
	assert.True(t, remaining.IsZero())
}

func TestUpdateStockFromReceiptIsAllOrNothing(t *testing.T) {
	f := newFixture(t, "0", "0")
	a, b := line("2", 10), line("3", 5)
	r := NewReceipt(f.owner, f.pharmacy, []LineItem{a, b})
	f.store.receipts[r.ID] = *r

	_, err := f.svc.UpdateStockFromReceipt(context.Background(), f.owner, f.pharmacy, []SellItem{
		{ProductID: a.ProductID, Quantity: 4},
		{ProductID: b.ProductID, Quantity: 6},
		{ProductID: id.New(), Quantity: 1},
		{ProductID: a.ProductID, Quantity: 7},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	lines := appErr.Details["lines"].(map[string]any)
	assert.Len(t, lines, 3)
	assert.NotContains(t, lines, "1")

	stored := f.store.receipts[r.ID]
	assert.Equal(t, int64(10), stored.Lines[0].Count)
	assert.Equal(t, int64(5), stored.Lines[1].Count)
	assert.Empty(t, f.store.events)
}

func TestUpdateStockWithoutReceipt(t *testing.T) {
	f := newFixture(t, "0", "0")
	_, err := f.svc.UpdateStockFromReceipt(context.Background(), f.owner, f.pharmacy, []SellItem{{ProductID: id.New(), Quantity: 1}})
	assert.True(t, apperror.IsNotFound(err))
}
