// Package units converts between package and pill quantities and derives
// per-pill and per-package prices. Everything here is pure.
package units

import (
	"strings"

	"github.com/shopspring/decimal"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/types"
)

// ProductType is how a product's stock_quantity is counted.
type ProductType string

const (
	// TypePackage counts stock in packages plus loose pills.
	TypePackage ProductType = "package"
	// TypeUnit counts stock directly in single units.
	TypeUnit ProductType = "unit"
)

// legacy labels still sent by older clients
var productTypeAliases = map[string]ProductType{
	"package": TypePackage,
	"pachka":  TypePackage,
	"unit":    TypeUnit,
	"dona":    TypeUnit,
}

// ParseProductType maps a raw value (including legacy aliases) to a ProductType.
func ParseProductType(s string) (ProductType, error) {
	if t, ok := productTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", apperror.NewInvalidProductType(s)
}

// Valid reports whether t is a known type.
func (t ProductType) Valid() bool {
	return t == TypePackage || t == TypeUnit
}

// PriceType says which price a medicine is quoted in.
type PriceType string

const (
	PricePerPackage PriceType = "package"
	PricePerPill    PriceType = "pill"
)

// ParsePriceType validates a raw price type. Empty defaults to per-package.
func ParsePriceType(s string) (PriceType, error) {
	switch PriceType(s) {
	case PricePerPackage, PricePerPill:
		return PriceType(s), nil
	case "":
		return PricePerPackage, nil
	}
	return "", apperror.NewValidation("unknown price type").
		WithDetail("field", "priceType").
		WithDetail("value", s)
}

// Breakdown is a pill total split into whole packages and loose pills.
type Breakdown struct {
	Packages   int64 `json:"packages"`
	LoosePills int64 `json:"loosePills"`
}

// Total returns the number of atomic units represented by b.
func (b Breakdown) Total(pillsPerPackage int64) int64 {
	return b.Packages*pillsPerPackage + b.LoosePills
}

// Stock is the on-hand state of a product as stored.
type Stock struct {
	Type            ProductType
	StockQuantity   int64
	PillsPerPackage int64
	LoosePills      int64
}

// TotalStock returns the stock in atomic pill units.
func TotalStock(s Stock) (int64, error) {
	switch s.Type {
	case TypeUnit:
		return s.StockQuantity, nil
	case TypePackage:
		if s.PillsPerPackage <= 0 {
			return 0, errPillsPerPackage(s.PillsPerPackage)
		}
		return s.StockQuantity*s.PillsPerPackage + s.LoosePills, nil
	}
	return 0, apperror.NewInvalidProductType(string(s.Type))
}

// Split divides total into packages and loose pills.
func Split(total, pillsPerPackage int64) (Breakdown, error) {
	if pillsPerPackage <= 0 {
		return Breakdown{}, errPillsPerPackage(pillsPerPackage)
	}
	return Breakdown{
		Packages:   total / pillsPerPackage,
		LoosePills: total % pillsPerPackage,
	}, nil
}

// Prices holds a medicine's quoted prices.
type Prices struct {
	Type            PriceType
	PerPill         types.NullMoney
	PerPackage      types.NullMoney
	PillsPerPackage int64
}

// PillPrice returns the price of a single pill.
// A per-package quote is divided by pills_per_package; zero or negative
// pills_per_package is an error.
func PillPrice(p Prices) (types.Money, error) {
	switch p.Type {
	case PricePerPill:
		return types.OrZero(p.PerPill), nil
	case PricePerPackage:
		if !p.PerPackage.Valid {
			return decimal.Zero, nil
		}
		if p.PillsPerPackage <= 0 {
			return decimal.Zero, errPillsPerPackage(p.PillsPerPackage)
		}
		return p.PerPackage.Decimal.Div(decimal.NewFromInt(p.PillsPerPackage)), nil
	}
	return decimal.Zero, apperror.NewValidation("unknown price type").WithDetail("value", string(p.Type))
}

// PackagePrice returns the price of a whole package.
func PackagePrice(p Prices) (types.Money, error) {
	switch p.Type {
	case PricePerPackage:
		return types.OrZero(p.PerPackage), nil
	case PricePerPill:
		if !p.PerPill.Valid {
			return decimal.Zero, nil
		}
		if p.PillsPerPackage <= 0 {
			return decimal.Zero, errPillsPerPackage(p.PillsPerPackage)
		}
		return p.PerPill.Decimal.Mul(decimal.NewFromInt(p.PillsPerPackage)), nil
	}
	return decimal.Zero, apperror.NewValidation("unknown price type").WithDetail("value", string(p.Type))
}

func errPillsPerPackage(v int64) error {
	return apperror.NewValidation("pills per package must be positive").
		WithDetail("field", "pillsPerPackage").
		WithDetail("value", v)
}
