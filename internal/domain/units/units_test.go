package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/types"
)

func TestParseProductType(t *testing.T) {
	tests := []struct {
		in   string
		want ProductType
	}{
		{"package", TypePackage},
		{"pachka", TypePackage},
		{" Unit ", TypeUnit},
		{"dona", TypeUnit},
	}
	for _, tt := range tests {
		got, err := ParseProductType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseProductType("box")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidProductType))
}

func TestTotalStock(t *testing.T) {
	total, err := TotalStock(Stock{Type: TypePackage, StockQuantity: 10, PillsPerPackage: 20, LoosePills: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(205), total)

	total, err = TotalStock(Stock{Type: TypeUnit, StockQuantity: 42, PillsPerPackage: 20, LoosePills: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)

	_, err = TotalStock(Stock{Type: TypePackage, StockQuantity: 1})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = TotalStock(Stock{Type: "crate"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidProductType))
}

func TestSplit(t *testing.T) {
	b, err := Split(190, 20)
	require.NoError(t, err)
	assert.Equal(t, Breakdown{Packages: 9, LoosePills: 10}, b)
	assert.Equal(t, int64(190), b.Total(20))

	_, err = Split(10, 0)
	assert.Error(t, err)
}

func TestPriceDerivation(t *testing.T) {
	perPackage := Prices{Type: PricePerPackage, PerPackage: types.Some(types.MustMoney("100")), PillsPerPackage: 20}
	pill, err := PillPrice(perPackage)
	require.NoError(t, err)
	assert.True(t, pill.Equal(types.MustMoney("5")))

	pkg, err := PackagePrice(perPackage)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(types.MustMoney("100")))

	perPill := Prices{Type: PricePerPill, PerPill: types.Some(types.MustMoney("2.5")), PillsPerPackage: 10}
	pkg, err = PackagePrice(perPill)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(types.MustMoney("25")))

	_, err = PillPrice(Prices{Type: PricePerPackage, PerPackage: types.Some(types.MustMoney("100"))})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "zero pills per package must not divide silently")

	pill, err = PillPrice(Prices{Type: PricePerPackage, PillsPerPackage: 10})
	require.NoError(t, err)
	assert.True(t, pill.IsZero())
}
