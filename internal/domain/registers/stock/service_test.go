package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/product"
	"pharmaledger/internal/domain/units"
)

type fakeRepo struct {
	products map[id.ID]product.Product
	saves    int
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("products", productID.String())
	}
	return &p, nil
}

func (r *fakeRepo) SaveStock(ctx context.Context, p *product.Product) error {
	r.saves++
	r.products[p.ID] = *p
	return nil
}

func newFixture(t *testing.T, p *product.Product) (*Service, *fakeRepo) {
	t.Helper()
	require.NoError(t, p.RecalculateStock())
	repo := &fakeRepo{products: map[id.ID]product.Product{p.ID: *p}}
	return NewService(repo, &tx.MockManager{}, nil), repo
}

func packageProduct(owner id.ID) *product.Product {
	p := product.NewProduct(owner, "Paracetamol", units.TypePackage)
	p.StockQuantity = 10
	p.PillsPerPackage = 20
	p.LoosePills = 5
	return p
}

func TestRemoveStockPackage(t *testing.T) {
	owner := id.New()
	p := packageProduct(owner)
	svc, repo := newFixture(t, p)

	m, err := svc.RemoveStock(context.Background(), owner, p.ID, 15)
	require.NoError(t, err)

	assert.Equal(t, int64(9), m.StockQuantity)
	assert.Equal(t, int64(10), m.LoosePills)
	assert.Equal(t, int64(190), m.TotalStock)
	require.NotNil(t, m.CountSplit)
	assert.Equal(t, units.Breakdown{Packages: 0, LoosePills: 15}, *m.CountSplit)

	stored := repo.products[p.ID]
	assert.Equal(t, int64(9), stored.StockQuantity)
	assert.Equal(t, int64(10), stored.LoosePills)
	assert.Equal(t, int64(190), stored.TotalStock)
}

func TestAddStockPackageCarriesLoosePills(t *testing.T) {
	owner := id.New()
	p := packageProduct(owner)
	svc, repo := newFixture(t, p)

	m, err := svc.AddStock(context.Background(), owner, p.ID, 35)
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.StockQuantity)
	assert.Equal(t, int64(0), m.LoosePills)
	assert.Equal(t, int64(240), repo.products[p.ID].TotalStock)
	assert.Equal(t, units.Breakdown{Packages: 1, LoosePills: 15}, *m.CountSplit)
}

func TestRemoveStockInsufficientLeavesStateUnchanged(t *testing.T) {
	owner := id.New()
	p := packageProduct(owner)
	svc, repo := newFixture(t, p)
	before := repo.products[p.ID]

	_, err := svc.RemoveStock(context.Background(), owner, p.ID, 206)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(206), appErr.Details["requested"])
	assert.Equal(t, int64(205), appErr.Details["available"])

	assert.Equal(t, before, repo.products[p.ID])
	assert.Zero(t, repo.saves)
}

func TestUnitProduct(t *testing.T) {
	owner := id.New()
	p := product.NewProduct(owner, "Syringe", units.TypeUnit)
	p.StockQuantity = 7
	svc, repo := newFixture(t, p)

	m, err := svc.RemoveStock(context.Background(), owner, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.StockQuantity)
	assert.Nil(t, m.CountSplit)

	_, err = svc.RemoveStock(context.Background(), owner, p.ID, 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	_, err = svc.AddStock(context.Background(), owner, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), repo.products[p.ID].TotalStock)
}

func TestTotalStockInvariantHolds(t *testing.T) {
	owner := id.New()
	p := packageProduct(owner)
	svc, repo := newFixture(t, p)
	ctx := context.Background()

	ops := []struct {
		dir   Direction
		count int64
	}{
		{DirectionRemove, 3}, {DirectionAdd, 41}, {DirectionRemove, 100}, {DirectionAdd, 1}, {DirectionRemove, 19},
	}
	for _, op := range ops {
		var err error
		if op.dir == DirectionAdd {
			_, err = svc.AddStock(ctx, owner, p.ID, op.count)
		} else {
			_, err = svc.RemoveStock(ctx, owner, p.ID, op.count)
		}
		require.NoError(t, err)

		stored := repo.products[p.ID]
		want, err := units.TotalStock(stored.Stock())
		require.NoError(t, err)
		assert.Equal(t, want, stored.TotalStock)
		assert.Less(t, stored.LoosePills, stored.PillsPerPackage)
	}
	assert.Equal(t, int64(205-3+41-100+1-19), repo.products[p.ID].TotalStock)
}

func TestForeignOrInvalidRequests(t *testing.T) {
	owner := id.New()
	p := packageProduct(owner)
	svc, _ := newFixture(t, p)
	ctx := context.Background()

	_, err := svc.RemoveStock(ctx, id.New(), p.ID, 1)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.AddStock(ctx, owner, p.ID, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.AddStock(ctx, owner, id.New(), 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMovementRefreshesAmounts(t *testing.T) {
	owner := id.New()
	p := packageProduct(owner)
	p.PurchasePrice = types.Some(types.MustMoney("3"))
	p.SellingPrice = types.Some(types.MustMoney("4.5"))
	p.RecalculateAmounts()
	svc, repo := newFixture(t, p)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, owner, p.ID, 40)
	require.NoError(t, err)
	stored := repo.products[p.ID]
	assert.Equal(t, int64(12), stored.StockQuantity)
	assert.True(t, types.MustMoney("36").Equal(stored.TotalPurchaseAmount.Decimal))
	assert.True(t, types.MustMoney("54").Equal(stored.TotalSellingAmount.Decimal))

	_, err = svc.RemoveStock(ctx, owner, p.ID, 100)
	require.NoError(t, err)
	stored = repo.products[p.ID]
	assert.Equal(t, int64(7), stored.StockQuantity)
	assert.True(t, types.MustMoney("21").Equal(stored.TotalPurchaseAmount.Decimal))
	assert.True(t, types.MustMoney("31.5").Equal(stored.TotalSellingAmount.Decimal))

	p = product.NewProduct(owner, "Plaster", units.TypeUnit)
	p.StockQuantity = 2
	svc, repo = newFixture(t, p)
	_, err = svc.AddStock(ctx, owner, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, repo.products[p.ID].TotalPurchaseAmount.Valid)
}
