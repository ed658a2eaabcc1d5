// Package purchases records purchase and purchase-return vouchers. A
// submitted draft is re-totalled on the server before anything is written;
// the persisted voucher carries the server's numbers, never the client's.
package purchases

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/merobill/merobill/internal/billing"
	"github.com/merobill/merobill/internal/transactions"
)

// Line is one persisted voucher row.
type Line struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"itemId"`
	UnitID    int64           `json:"unitId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Bonus     decimal.Decimal `json:"bonus"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
	Vatable   bool            `json:"vatable"`
	CCAmount  decimal.Decimal `json:"ccAmount"`
}

// Voucher is a persisted purchase or purchase-return bill.
type Voucher struct {
	ID              int64              `json:"id"`
	CompanyID       int64              `json:"-"`
	FiscalYearID    int64              `json:"fiscalYearId"`
	UserID          int64              `json:"userId"`
	AccountID       int64              `json:"accountId"`
	Class           transactions.Class `json:"type"`
	VoucherNumber   int64              `json:"voucherNumber"`
	PartyBillNumber string             `json:"partyBillNumber"`
	Date            time.Time          `json:"date"`
	NepaliDate      string             `json:"nepaliDate"`
	Totals          billing.Totals     `json:"totals"`
	Lines           []Line             `json:"lines"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// Submission is a draft bill handed in for posting. DeclaredTotal is the
// grand total the client showed the operator; the server recomputes and
// refuses to post when the two disagree.
type Submission struct {
	Class           transactions.Class
	AccountID       int64
	PartyBillNumber string
	Date            time.Time
	NepaliDate      string
	Draft           billing.Draft
	DeclaredTotal   decimal.Decimal
}

// Conflict describes an earlier voucher that already carries the submitted
// party bill number under a different account. It is reported as a warning,
// never as a rejection.
type Conflict struct {
	PartyName     string    `json:"partyName"`
	Date          time.Time `json:"date"`
	NepaliDate    string    `json:"nepaliDate"`
	VoucherNumber int64     `json:"voucherNumber"`
}
