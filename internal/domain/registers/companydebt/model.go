// Package companydebt aggregates product supplier debt per manufacturer and
// spreads company-level payments across the matching products.
package companydebt

import (
	"slices"
	"strings"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/domain/catalogs/company"
	"pharmaledger/internal/domain/catalogs/product"
)

// AllocationOrder decides which products a company payment settles first.
type AllocationOrder string

const (
	// OrderOldestFirst pays the earliest purchases first.
	OrderOldestFirst AllocationOrder = "oldest_first"
	// OrderLargestFirst pays the largest remaining debts first.
	OrderLargestFirst AllocationOrder = "largest_first"
	// OrderSmallestFirst clears small debts first.
	OrderSmallestFirst AllocationOrder = "smallest_first"
)

// ParseAllocationOrder validates an order; empty means oldest first.
func ParseAllocationOrder(s string) (AllocationOrder, error) {
	switch o := AllocationOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderOldestFirst, nil
	case OrderOldestFirst, OrderLargestFirst, OrderSmallestFirst:
		return o, nil
	}
	return "", apperror.NewValidation("unknown allocation order").
		WithDetail("field", "order").
		WithDetail("value", s)
}

// Sort orders products for allocation. Ties fall back to created_at then id.
func (o AllocationOrder) Sort(products []*product.Product) {
	slices.SortStableFunc(products, func(a, b *product.Product) int {
		da, db := types.OrZero(a.RemainingDebt), types.OrZero(b.RemainingDebt)
		switch o {
		case OrderLargestFirst:
			if c := db.Cmp(da); c != 0 {
				return c
			}
		case OrderSmallestFirst:
			if c := da.Cmp(db); c != 0 {
				return c
			}
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// ProductDebt is one product's share of a company's debt.
type ProductDebt struct {
	ProductID     id.ID       `json:"productId"`
	Name          string      `json:"name"`
	InitialDebt   types.Money `json:"initialDebt"`
	RemainingDebt types.Money `json:"remainingDebt"`
}

// CompanyDebt is the outstanding debt owed to one company.
type CompanyDebt struct {
	Company   *company.Company `json:"company"`
	TotalDebt types.Money      `json:"totalDebt"`
	Products  []ProductDebt    `json:"products"`
}

// Allocation is the part of a payment applied to one product.
type Allocation struct {
	ProductID id.ID       `json:"productId"`
	Name      string      `json:"name"`
	Paid      types.Money `json:"paid"`
	Remaining types.Money `json:"remaining"`
}

// PaymentResult reports how a company payment was spread.
type PaymentResult struct {
	CompanyID   id.ID           `json:"companyId"`
	CompanyName string          `json:"companyName"`
	Order       AllocationOrder `json:"order"`
	TotalPaid   types.Money     `json:"totalPaid"`
	Unallocated types.Money     `json:"unallocated"`
	Allocations []Allocation    `json:"allocations"`
}

// Summary is the owner's overall supplier debt.
type Summary struct {
	TotalDebt         types.Money `json:"totalDebt"`
	CompaniesWithDebt int         `json:"companiesWithDebt"`
}

// allocate spreads amount over products in their current order and mutates
// their remaining debt. It returns the allocations and what is left over.
func allocate(products []*product.Product, amount types.Money) ([]Allocation, types.Money) {
	left := amount
	var out []Allocation
	for _, p := range products {
		if !left.IsPositive() {
			break
		}
		debt := types.OrZero(p.RemainingDebt)
		if !debt.IsPositive() {
			continue
		}
		paid := debt
		if left.LessThan(debt) {
			paid = left
		}
		left = left.Sub(paid)
		p.RemainingDebt = types.Some(debt.Sub(paid))
		p.Touch()

		out = append(out, Allocation{
			ProductID: p.ID,
			Name:      p.Name,
			Paid:      paid,
			Remaining: p.RemainingDebt.Decimal,
		})
	}
	return out, left
}
