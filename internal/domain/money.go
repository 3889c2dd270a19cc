package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// MinorUnits converts the amount to the currency's smallest denomination,
// rounding half away from zero.
func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(minorScale(m.Currency)).Round(0).IntPart()
}

// RoundMinor rounds an amount already expressed in minor units.
func RoundMinor(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

func minorScale(cur currency.Unit) int32 {
	scale, _ := currency.Standard.Rounding(cur)
	return int32(scale)
}
