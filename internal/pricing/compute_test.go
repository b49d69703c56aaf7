package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTierPrices(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		margin   string
		card     string
		rounding string
		base     string
		cardOut  string
	}{
		{
			name: "reference values",
			cost: "1000", margin: "50", card: "10", rounding: "0",
			base: "1500", cardOut: "1650",
		},
		{
			name: "rounding constant lands before surcharge",
			cost: "1000", margin: "50", card: "10", rounding: "25",
			base: "1525", cardOut: "1677.5",
		},
		{
			name: "two decimal places at the boundary",
			cost: "999.99", margin: "21.5", card: "9.1", rounding: "0.5",
			base: "1215.49", cardOut: "1326.1",
		},
		{
			name: "zero margin and surcharge pass cost through",
			cost: "840.4", margin: "0", card: "0", rounding: "0",
			base: "840.4", cardOut: "840.4",
		},
		{
			name: "negative rounding constant discounts",
			cost: "100", margin: "10", card: "0", rounding: "-5",
			base: "105", cardOut: "105",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTierPrices(
				decimal.RequireFromString(tc.cost),
				decimal.RequireFromString(tc.margin),
				decimal.RequireFromString(tc.card),
				decimal.RequireFromString(tc.rounding),
			)
			assert.True(t, got.BasePrice.Equal(decimal.RequireFromString(tc.base)),
				"base = %s, want %s", got.BasePrice, tc.base)
			assert.True(t, got.CardPrice.Equal(decimal.RequireFromString(tc.cardOut)),
				"card = %s, want %s", got.CardPrice, tc.cardOut)
		})
	}
}
