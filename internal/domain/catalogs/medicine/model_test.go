package medicine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/units"
)

func TestPillPriceFromPackage(t *testing.T) {
	m := NewMedicine(id.New(), "Amoxicillin", 10)
	m.PricePerPackage = types.Some(types.MustMoney("30"))

	price, err := m.PillPrice()
	require.NoError(t, err)
	assert.True(t, price.Equal(types.MustMoney("3")))
}

func TestPackagePriceFromPill(t *testing.T) {
	m := NewMedicine(id.New(), "Amoxicillin", 10)
	m.PriceType = units.PricePerPill
	m.PricePerPill = types.Some(types.MustMoney("1.25"))

	price, err := m.PackagePrice()
	require.NoError(t, err)
	assert.True(t, price.Equal(types.MustMoney("12.5")))
}

func TestCounters(t *testing.T) {
	m := NewMedicine(id.New(), "Amoxicillin", 10)
	m.StockQuantity = 100

	m.ApplyGiven(30)
	m.ApplySold(20)
	assert.Equal(t, int64(50), m.RemainingQuantity())

	m.ApplyReturned(50)
	assert.Equal(t, int64(0), m.SoldQuantity, "returns clamp at zero")

	m.ApplyGiven(500)
	assert.Equal(t, int64(0), m.RemainingQuantity())
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	m := NewMedicine(id.New(), "Amoxicillin", 10)
	require.NoError(t, m.Validate(ctx))

	m.PillsPerPackage = 0
	assert.Error(t, m.Validate(ctx))

	m.PillsPerPackage = 10
	m.PriceType = "bottle"
	assert.Error(t, m.Validate(ctx))
}
