package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoKind string

const (
	PromoKindPercent PromoKind = "percent"
	PromoKindFixed   PromoKind = "fixed"
)

// PromoCode value is a percentage (e.g. 15 for 15%) for percent codes and minor units for fixed codes.
type PromoCode struct {
	Code        string
	Kind        PromoKind
	Value       decimal.Decimal
	MinSubtotal int64
	Active      bool
	ExpiresAt   *time.Time
}

func (p PromoCode) ValidAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	return p.ExpiresAt == nil || now.Before(*p.ExpiresAt)
}

// DiscountFor returns the discount in minor units for the given subtotal, never more than the subtotal.
func (p PromoCode) DiscountFor(subtotal int64, now time.Time) int64 {
	if !p.ValidAt(now) || subtotal < p.MinSubtotal || subtotal <= 0 {
		return 0
	}

	var discount int64
	switch p.Kind {
	case PromoKindPercent:
		discount = RoundMinor(decimal.NewFromInt(subtotal).Mul(p.Value).Div(decimal.NewFromInt(100)))
	case PromoKindFixed:
		discount = RoundMinor(p.Value)
	}

	if discount < 0 {
		return 0
	}
	return min(discount, subtotal)
}
