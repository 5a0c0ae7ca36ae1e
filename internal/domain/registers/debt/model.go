package debt

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/entity"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/types"
)

// Record is a standalone supplier debt tied to a product. It predates the
// debt columns on Product and is kept for owners who still track debts this way.
type Record struct {
	entity.Owned

	ProductID       id.ID       `db:"product_id" json:"productId"`
	InitialAmount   types.Money `db:"initial_amount" json:"initialAmount"`
	RemainingAmount types.Money `db:"remaining_amount" json:"remainingAmount"`
}

// ProductPayment is the outcome of paying down a product's debt.
type ProductPayment struct {
	ProductID     id.ID       `json:"productId"`
	Amount        types.Money `json:"amount"`
	InitialDebt   types.Money `json:"initialDebt"`
	RemainingDebt types.Money `json:"remainingDebt"`
	Message       string      `json:"message"`
}

// PharmacyPayment is the outcome of paying down a pharmacy's debt.
type PharmacyPayment struct {
	PaymentID     id.ID       `json:"paymentId"`
	PharmacyID    id.ID       `json:"pharmacyId"`
	Amount        types.Money `json:"amount"`
	TotalDebt     types.Money `json:"totalDebt"`
	RemainingDebt types.Money `json:"remainingDebt"`
	Message       string      `json:"message"`
}

// CheckPayment enforces 0 < amount <= remaining.
func CheckPayment(amount, remaining types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewInvalidAmount(amount.String())
	}
	if amount.GreaterThan(remaining) {
		return apperror.NewExceedsDebt(amount.String(), remaining.String())
	}
	return nil
}

var printer = message.NewPrinter(language.English)

// confirmation renders a payment receipt line with grouped thousands.
func confirmation(initial, remaining types.Money) string {
	return printer.Sprintf("Payment accepted. Initial debt: %.2f, remaining debt: %.2f",
		initial.InexactFloat64(), remaining.InexactFloat64())
}
