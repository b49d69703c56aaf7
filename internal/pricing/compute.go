package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// TierPrices holds the derived selling prices for one tier.
type TierPrices struct {
	BasePrice decimal.Decimal `json:"base_price"`
	CardPrice decimal.Decimal `json:"card_price"`
}

// ComputeTierPrices derives the selling prices from the four tier inputs:
//
//	basePrice = cost * (1 + marginPct/100) + roundingConstant
//	cardPrice = basePrice * (1 + cardSurchargePct/100)
//
// Rounding to two decimal places happens here and nowhere else. The stored
// base_price and card_price columns are recomputed through this function on
// every write, never hand-edited.
func ComputeTierPrices(cost, marginPct, cardSurchargePct, roundingConstant decimal.Decimal) TierPrices {
	one := decimal.NewFromInt(1)
	base := cost.Mul(one.Add(marginPct.Div(hundred))).Add(roundingConstant).Round(2)
	card := base.Mul(one.Add(cardSurchargePct.Div(hundred))).Round(2)
	return TierPrices{BasePrice: base, CardPrice: card}
}
