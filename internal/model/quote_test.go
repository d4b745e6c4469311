package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateLineTotal(t *testing.T) {
	cases := []struct {
		name                             string
		qty, unitPrice                   string
		discountPercent, discountAmount  string
		taxRate                          string
		want                             string
	}{
		{"plain", "3", "10", "0", "0", "0", "30"},
		{"with tax", "2", "100", "0", "0", "18", "236"},
		{"flat discount", "1", "50", "0", "5", "0", "45"},
		{"percent discount", "4", "50", "10", "0", "0", "180"},
		// Both discounts set: the percentage wins, the flat amount is ignored
		{"percent precedence", "4", "50", "10", "50", "0", "180"},
		{"discount then tax", "2", "100", "10", "0", "18", "212.4"},
		{"rounds to 2 decimals", "3", "33.333", "0", "0", "0", "100"},
		{"fractional quantity", "1.5", "10", "0", "0", "0", "15"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := InterventionQuoteLine{
				Quantity:        dec(tc.qty),
				UnitPrice:       dec(tc.unitPrice),
				DiscountPercent: dec(tc.discountPercent),
				DiscountAmount:  dec(tc.discountAmount),
				TaxRate:         dec(tc.taxRate),
			}
			got := line.CalculateLineTotal()
			assert.True(t, dec(tc.want).Equal(got), "want %s got %s", tc.want, got)
			assert.True(t, got.Equal(line.LineTotal), "CalculateLineTotal must store the result")
		})
	}
}

func TestAuthorizationLineUsesSameArithmetic(t *testing.T) {
	quoteLine := InterventionQuoteLine{
		Quantity:        dec("2"),
		UnitPrice:       dec("100"),
		DiscountPercent: dec("10"),
		TaxRate:         dec("18"),
	}
	authLine := AuthorizationLine{
		Quantity:        dec("2"),
		UnitPrice:       dec("100"),
		DiscountPercent: dec("10"),
		TaxRate:         dec("18"),
	}
	assert.True(t, quoteLine.CalculateLineTotal().Equal(authLine.CalculateLineTotal()))
}

func TestRecalculateTotal(t *testing.T) {
	quote := InterventionQuote{
		Lines: []InterventionQuoteLine{
			{LineTotal: dec("236")},
			{LineTotal: dec("45")},
		},
	}
	quote.RecalculateTotal()
	assert.Equal(t, "281.00", quote.TotalAmount.StringFixed(2))

	auth := InterventionWorkAuthorization{
		Lines: []AuthorizationLine{
			{LineTotal: dec("100.50")},
			{LineTotal: dec("0.25")},
		},
	}
	auth.RecalculateTotal()
	assert.Equal(t, "100.75", auth.TotalAmount.StringFixed(2))
}
