package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func vatableLine(qty, price string) Line {
	return Line{Quantity: dec(qty), UnitPrice: dec(price), Vatable: true}
}

func TestCalculateRoundOffScenario(t *testing.T) {
	// Three vatable lines 100.00, 250.33, 49.995; line-level rounding makes
	// the third 50.00 before aggregation.
	d := Draft{
		Lines: []Line{
			vatableLine("1", "100.00"),
			vatableLine("1", "250.33"),
			vatableLine("1", "49.995"),
		},
		DiscountPercent: dec("10"),
		VATMode:         VATModeAll,
		VATRate:         dec("13"),
		AutoRoundOff:    true,
	}

	totals := Calculate(d)

	assert.True(t, totals.SubTotal.Equal(dec("400.33")), "subTotal = %s", totals.SubTotal)
	assert.True(t, totals.DiscountAmount.Equal(dec("40.03")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.TaxableAmount.Equal(dec("360.30")), "taxable = %s", totals.TaxableAmount)
	assert.True(t, totals.VATAmount.Equal(dec("46.84")), "vat = %s", totals.VATAmount)
	assert.True(t, totals.AutoRoundOffAmount.Equal(dec("0.86")), "autoRoundOff = %s", totals.AutoRoundOffAmount)
	assert.True(t, totals.RoundOffAmount.Equal(dec("0.86")), "roundOff = %s", totals.RoundOffAmount)
	assert.True(t, totals.TotalAmount.Equal(dec("408")), "total = %s", totals.TotalAmount)
}

func TestCalculateDiscountAmountWins(t *testing.T) {
	d := Draft{
		Lines:           []Line{vatableLine("1", "1000")},
		DiscountAmount:  dec("20"),
		DiscountPercent: dec("5"),
		VATMode:         VATModeExempt,
	}

	totals := Calculate(d)

	assert.True(t, totals.DiscountAmount.Equal(dec("20")), "fixed amount must win")
	assert.True(t, totals.DiscountPercent.Equal(dec("2.00")), "percentage recomputed, got %s", totals.DiscountPercent)
	assert.True(t, totals.TaxableAmount.Equal(dec("980")))
}

func TestCalculateExemptModeSkipsVAT(t *testing.T) {
	d := Draft{
		Lines:   []Line{vatableLine("2", "50")},
		VATMode: VATModeExempt,
		VATRate: dec("13"),
	}

	totals := Calculate(d)
	assert.True(t, totals.VATAmount.IsZero())
	assert.True(t, totals.TotalAmount.Equal(dec("100")))
}

func TestCalculatePartitionsAndAllocation(t *testing.T) {
	d := Draft{
		Lines: []Line{
			vatableLine("1", "300"),
			{Quantity: dec("1"), UnitPrice: dec("100"), Vatable: false},
		},
		DiscountAmount: dec("40"),
		VATMode:        VATModeAll,
		VATRate:        dec("13"),
	}

	totals := Calculate(d)

	// 40 allocated 3:1 across a 300/100 split.
	assert.True(t, totals.TaxableAmount.Equal(dec("270")), "taxable = %s", totals.TaxableAmount)
	assert.True(t, totals.NonTaxableAmount.Equal(dec("90")), "nonTaxable = %s", totals.NonTaxableAmount)
	assert.True(t, totals.VATAmount.Equal(dec("35.10")), "vat = %s", totals.VATAmount)
}

func TestCalculateCCChargesFeedVATBase(t *testing.T) {
	d := Draft{
		Lines: []Line{
			{Quantity: dec("1"), UnitPrice: dec("100"), Vatable: true, CCAmount: dec("10")},
		},
		VATMode: VATModeAll,
		VATRate: dec("13"),
	}

	totals := Calculate(d)

	assert.True(t, totals.TotalCCAmount.Equal(dec("10")))
	assert.True(t, totals.TaxableAmount.Equal(dec("110")))
	assert.True(t, totals.VATAmount.Equal(dec("14.30")), "vat = %s", totals.VATAmount)
}

func TestCalculateManualRoundOffOverride(t *testing.T) {
	manual := dec("0.50")
	d := Draft{
		Lines:          []Line{vatableLine("1", "100.30")},
		VATMode:        VATModeExempt,
		AutoRoundOff:   true,
		ManualRoundOff: &manual,
	}

	totals := Calculate(d)

	assert.True(t, totals.RoundOffAmount.Equal(dec("0.50")), "manual value used verbatim")
	assert.True(t, totals.TotalAmount.Equal(dec("100.80")), "total = %s", totals.TotalAmount)
	// Auto calculation remains visible for comparison.
	assert.True(t, totals.AutoRoundOffAmount.Equal(dec("0.70")), "auto = %s", totals.AutoRoundOffAmount)
}

func TestCalculateEmptyDraft(t *testing.T) {
	totals := Calculate(Draft{VATMode: VATModeAll, VATRate: dec("13"), AutoRoundOff: true})

	require.True(t, totals.SubTotal.IsZero())
	require.True(t, totals.TotalAmount.IsZero())
	require.True(t, totals.RoundOffAmount.IsZero())
}

func TestCalculateNoSideEffects(t *testing.T) {
	d := Draft{
		Lines:           []Line{vatableLine("3", "33.333")},
		DiscountPercent: dec("5"),
		VATMode:         VATModeAll,
		VATRate:         dec("13"),
	}

	first := Calculate(d)
	second := Calculate(d)
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.VATAmount.Equal(second.VATAmount))
}
