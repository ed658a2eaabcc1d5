// Package billing computes draft bill totals.
//
// All arithmetic runs on decimals with rounding to two places after every
// aggregation step, so many-line bills cannot accumulate floating-point
// drift. The calculator performs no I/O and is safe to re-invoke on every
// input change.
package billing

import "github.com/shopspring/decimal"

// VAT-exempt modes of a draft bill.
const (
	VATModeAll     = "all"   // mixed bill, vatable lines taxed
	VATModeExempt  = "true"  // exempt-only bill, no VAT charged
	VATModeVatable = "false" // vatable-only bill
)

// Line is one draft bill row. Amounts derive from quantity and unit price;
// bonus quantity is free stock and never priced.
type Line struct {
	ItemID    int64           `json:"itemId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Bonus     decimal.Decimal `json:"bonus"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitID    int64           `json:"unitId"`
	Vatable   bool            `json:"vatable"`
	CCAmount  decimal.Decimal `json:"ccAmount"`
}

// Amount is the priced line value, rounded at the line level before any
// aggregation.
func (l Line) Amount() decimal.Decimal {
	return round2(l.Quantity.Mul(l.UnitPrice))
}

// Draft is the not-yet-persisted bill being edited.
type Draft struct {
	Lines           []Line          `json:"lines"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	VATMode         string          `json:"vatMode"`
	VATRate         decimal.Decimal `json:"vatRate"`
	AutoRoundOff    bool            `json:"autoRoundOff"`
	// ManualRoundOff, when non-nil, is used verbatim and bypasses the
	// automatic calculation (which is still reported for comparison).
	ManualRoundOff *decimal.Decimal `json:"manualRoundOff,omitempty"`
}

// Totals is the computed totals object.
type Totals struct {
	SubTotal           decimal.Decimal `json:"subTotal"`
	TaxableAmount      decimal.Decimal `json:"taxableAmount"`
	NonTaxableAmount   decimal.Decimal `json:"nonTaxableAmount"`
	VATAmount          decimal.Decimal `json:"vatAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TotalCCAmount      decimal.Decimal `json:"totalCCAmount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	DiscountPercent    decimal.Decimal `json:"discountPercent"`
	RoundOffAmount     decimal.Decimal `json:"roundOffAmount"`
	AutoRoundOffAmount decimal.Decimal `json:"autoRoundOffAmount"`
}

var hundred = decimal.NewFromInt(100)

// Calculate computes the totals for a draft bill.
func Calculate(d Draft) Totals {
	var taxableSub, nonTaxableSub, taxableCC, nonTaxableCC decimal.Decimal

	for _, line := range d.Lines {
		amount := line.Amount()
		cc := round2(line.CCAmount)
		if line.Vatable {
			taxableSub = round2(taxableSub.Add(amount))
			taxableCC = round2(taxableCC.Add(cc))
		} else {
			nonTaxableSub = round2(nonTaxableSub.Add(amount))
			nonTaxableCC = round2(nonTaxableCC.Add(cc))
		}
	}

	subTotal := round2(taxableSub.Add(nonTaxableSub))
	totalCC := round2(taxableCC.Add(nonTaxableCC))

	// Discount: the fixed amount wins when present, and the percentage is
	// recomputed from it; otherwise the percentage drives the amount.
	discountAmount := decimal.Zero
	discountPercent := decimal.Zero
	switch {
	case d.DiscountAmount.IsPositive():
		discountAmount = round2(d.DiscountAmount)
		if subTotal.IsPositive() {
			discountPercent = round2(discountAmount.Mul(hundred).Div(subTotal))
		}
	case d.DiscountPercent.IsPositive():
		discountPercent = d.DiscountPercent
		discountAmount = round2(subTotal.Mul(discountPercent).Div(hundred))
	}

	// Allocate the discount across partitions proportionally to their share
	// of the pre-discount subtotal. The non-taxable share takes the
	// remainder so the halves always sum to the full discount.
	taxableDiscount := decimal.Zero
	if subTotal.IsPositive() {
		taxableDiscount = round2(discountAmount.Mul(taxableSub).Div(subTotal))
	}
	nonTaxableDiscount := round2(discountAmount.Sub(taxableDiscount))

	taxableAmount := round2(taxableSub.Sub(taxableDiscount).Add(taxableCC))
	nonTaxableAmount := round2(nonTaxableSub.Sub(nonTaxableDiscount).Add(nonTaxableCC))

	vatAmount := decimal.Zero
	if d.VATMode != VATModeExempt && d.VATRate.IsPositive() {
		vatAmount = round2(taxableAmount.Mul(d.VATRate).Div(hundred))
	}

	total := round2(taxableAmount.Add(nonTaxableAmount).Add(vatAmount))

	// Auto round-off lifts the total to the next whole currency unit. It is
	// always computed so the UI can show it next to a manual override.
	autoRoundOff := total.Ceil().Sub(total)

	roundOff := decimal.Zero
	switch {
	case d.ManualRoundOff != nil:
		roundOff = round2(*d.ManualRoundOff)
		total = round2(total.Add(roundOff))
	case d.AutoRoundOff:
		roundOff = autoRoundOff
		total = total.Ceil()
	}

	return Totals{
		SubTotal:           subTotal,
		TaxableAmount:      taxableAmount,
		NonTaxableAmount:   nonTaxableAmount,
		VATAmount:          vatAmount,
		TotalAmount:        total,
		TotalCCAmount:      totalCC,
		DiscountAmount:     discountAmount,
		DiscountPercent:    discountPercent,
		RoundOffAmount:     roundOff,
		AutoRoundOffAmount: autoRoundOff,
	}
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
