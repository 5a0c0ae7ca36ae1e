// Package receipt handles goods handed to a pharmacy on credit. A receipt
// raises the pharmacy's debt when created and reverses it when deleted.
package receipt

import (
	"context"
	"fmt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
	"pharmaledger/internal/core/validation"
	"pharmaledger/internal/domain"
)

// LineItem is one product line of a receipt.
type LineItem struct {
	ProductID    id.ID       `json:"productId" validate:"required"`
	Name         string      `json:"name" validate:"max=255"`
	Dosage       string      `json:"dosage,omitempty"`
	Composition  string      `json:"composition,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	Count        int64       `json:"count" validate:"gt=0"`
	SellingPrice types.Money `json:"sellingPrice"`
	Total        types.Money `json:"total"`
}

// Amount is count * selling price.
func (l LineItem) Amount() types.Money {
	return l.SellingPrice.Mul(types.FromInt(l.Count))
}

// Receipt is a delivery of products to a pharmacy.
type Receipt struct {
	entity.BaseEntity

	OwnerID    id.ID       `db:"owner_id" json:"ownerId"`
	PharmacyID id.ID       `db:"pharmacy_id" json:"pharmacyId"`
	Lines      []LineItem  `db:"products" json:"lines"`
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`
	TotalCount int64       `db:"total_count" json:"totalCount"`
}

// NewReceipt creates a receipt and computes its totals.
func NewReceipt(owner, pharmacyID id.ID, lines []LineItem) *Receipt {
	r := &Receipt{
		BaseEntity: entity.NewBaseEntity(),
		OwnerID:    owner,
		PharmacyID: pharmacyID,
		Lines:      lines,
	}
	r.Recalculate()
	return r
}

// BelongsTo reports whether the receipt is owned by owner.
func (r *Receipt) BelongsTo(owner id.ID) bool {
	return r.OwnerID == owner
}

// LinesTotal is the sum of count * selling price over all lines.
func (r *Receipt) LinesTotal() types.Money {
	total := types.Zero()
	for _, l := range r.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Recalculate refreshes line totals and the receipt totals from the lines.
func (r *Receipt) Recalculate() {
	r.TotalCount = 0
	for i := range r.Lines {
		r.Lines[i].Total = r.Lines[i].Amount()
		r.TotalCount += r.Lines[i].Count
	}
	r.TotalPrice = r.LinesTotal()
}

// ReversalAmount is the debt to remove when the receipt is deleted: the
// stored total, or the lines' total when none was stored.
func (r *Receipt) ReversalAmount() types.Money {
	if r.TotalPrice.IsPositive() {
		return r.TotalPrice
	}
	return r.LinesTotal()
}

// Validate implements entity.Validatable.
func (r *Receipt) Validate(ctx context.Context) error {
	if id.IsNil(r.PharmacyID) {
		return apperror.NewValidation("pharmacy is required").WithDetail("field", "pharmacyId")
	}
	return ValidateLines(r.Lines)
}

// ValidateLines checks every line and reports all failures at once.
func ValidateLines(lines []LineItem) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "lines")
	}
	if err := validation.Items(lines); err != nil {
		return err
	}
	failures := make(map[string]any)
	for i, l := range lines {
		if l.SellingPrice.IsNegative() {
			failures[fmt.Sprint(i+1)] = map[string]string{"sellingPrice": "gte=0"}
		}
	}
	if len(failures) > 0 {
		return apperror.NewValidation("invalid line items").WithDetail("lines", failures)
	}
	return nil
}

// SellItem is a quantity sold out of the latest receipt.
type SellItem struct {
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Filter narrows receipt listings.
type Filter struct {
	domain.ListFilter

	PharmacyID *id.ID
}

// applySales checks every item against the receipt lines and, only when all
// pass, decrements the line counts. Repeated products are checked against
// their cumulative quantity. Totals stay as issued so a later delete reverses
// the full receipt amount.
func applySales(r *Receipt, items []SellItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("products are required").WithDetail("field", "products")
	}

	index := make(map[id.ID]int, len(r.Lines))
	for i, l := range r.Lines {
		if _, seen := index[l.ProductID]; !seen {
			index[l.ProductID] = i
		}
	}

	requested := make(map[id.ID]int64, len(items))
	failures := make(map[string]any)
	for i, item := range items {
		line := fmt.Sprint(i + 1)
		pos, ok := index[item.ProductID]
		switch {
		case !ok:
			failures[line] = map[string]any{
				"productId": item.ProductID.String(),
				"reason":    "product not found in receipt",
			}
		case item.Quantity <= 0:
			failures[line] = map[string]any{
				"productId": item.ProductID.String(),
				"reason":    "quantity must be positive",
			}
		default:
			requested[item.ProductID] += item.Quantity
			if available := r.Lines[pos].Count; requested[item.ProductID] > available {
				failures[line] = map[string]any{
					"productId": item.ProductID.String(),
					"reason":    "insufficient quantity",
					"available": available,
					"requested": requested[item.ProductID],
				}
			}
		}
	}
	if len(failures) > 0 {
		return nil, apperror.NewValidation("cannot update stock from receipt").WithDetail("lines", failures)
	}

	for _, item := range items {
		r.Lines[index[item.ProductID]].Count -= item.Quantity
	}

	updated := make([]LineItem, 0, len(items))
	for _, item := range items {
		updated = append(updated, r.Lines[index[item.ProductID]])
	}
	return updated, nil
}
