package product

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
	"pharmaledger/internal/domain/units"
)

type memRepo struct {
	items  map[id.ID]Product
	locked int
}

func (m *memRepo) Create(_ context.Context, p *Product) error {
	m.items[p.ID] = *p
	return nil
}

func (m *memRepo) GetByID(_ context.Context, productID id.ID) (*Product, error) {
	p, ok := m.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return &p, nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, productID id.ID) (*Product, error) {
	m.locked++
	return m.GetByID(ctx, productID)
}

func (m *memRepo) Update(_ context.Context, p *Product) error {
	m.items[p.ID] = *p
	return nil
}

func (m *memRepo) SetArchived(_ context.Context, productID id.ID, archived bool) error {
	p := m.items[productID]
	p.Archived = archived
	m.items[productID] = p
	return nil
}

func (m *memRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Product], error) {
	return domain.ListResult[*Product]{}, nil
}

func TestUpdateKeepsLedgerCounters(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: map[id.ID]Product{}}
	svc := NewService(repo, &tx.MockManager{})
	owner := id.New()

	p := NewProduct(owner, "Aspirin", units.TypePackage)
	p.StockQuantity = 10
	p.PillsPerPackage = 10
	p.PurchasePrice = types.Some(types.MustMoney("2"))
	require.NoError(t, svc.Create(ctx, p))

	stale, err := svc.Get(ctx, owner, p.ID)
	require.NoError(t, err)

	// a stock movement lands between the read and the write
	moved := repo.items[p.ID]
	moved.StockQuantity = 4
	moved.LoosePills = 3
	moved.RemainingDebt = types.Some(types.MustMoney("5"))
	repo.items[p.ID] = moved

	stale.Name = "Aspirin Cardio"
	stale.PillsPerPackage = 20
	require.NoError(t, svc.Update(ctx, owner, stale))

	stored := repo.items[p.ID]
	assert.Equal(t, 1, repo.locked)
	assert.Equal(t, "Aspirin Cardio", stored.Name)
	assert.Equal(t, int64(4), stored.StockQuantity)
	assert.Equal(t, int64(3), stored.LoosePills)
	assert.Equal(t, int64(83), stored.TotalStock)
	assert.True(t, stored.TotalPurchaseAmount.Decimal.Equal(types.MustMoney("8")))
	assert.True(t, stored.RemainingDebt.Decimal.Equal(types.MustMoney("5")))
	assert.True(t, stored.InitialDebt.Decimal.Equal(types.MustMoney("20")))
}

func TestUpdateForeignProduct(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: map[id.ID]Product{}}
	svc := NewService(repo, &tx.MockManager{})

	p := NewProduct(id.New(), "Aspirin", units.TypeUnit)
	require.NoError(t, svc.Create(ctx, p))

	intruder := id.New()
	forged := *p
	forged.OwnerID = intruder
	forged.Name = "taken"
	err := svc.Update(ctx, intruder, &forged)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "Aspirin", repo.items[p.ID].Name)
}
