// Package transactions surfaces recent item/account history to the
// data-entry screens, gated by per-user display preferences.
package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/merobill/merobill/internal/shared"
)

// Class is a transaction class.
type Class string

const (
	ClassSales          Class = "Sales"
	ClassPurchase       Class = "Purchase"
	ClassSalesReturn    Class = "SalesReturn"
	ClassPurchaseReturn Class = "PurchaseReturn"
)

// ParseClass validates a path segment into a Class.
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case ClassSales, ClassPurchase, ClassSalesReturn, ClassPurchaseReturn:
		return Class(s), nil
	}
	return "", shared.ErrValidation
}

// Transaction is one historical row with its display references resolved.
type Transaction struct {
	ID            int64           `json:"id"`
	Class         Class           `json:"type"`
	Date          time.Time       `json:"date"`
	NepaliDate    string          `json:"nepaliDate"`
	VoucherNumber int64           `json:"voucherNumber"`
	BillNumber    string          `json:"billNumber"`
	AccountName   string          `json:"accountName"`
	ItemName      string          `json:"itemName"`
	UnitName      string          `json:"unitName"`
	Quantity      decimal.Decimal `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
}

// Result is what the gate hands back to the UI. DisplayEnabled lets callers
// distinguish "feature off" from "nothing found".
type Result struct {
	Transactions   []Transaction `json:"transactions"`
	DisplayEnabled bool          `json:"displayEnabled"`
}
