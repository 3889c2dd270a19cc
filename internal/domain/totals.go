package domain

import (
	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

// ComputedOrderTotals holds amounts in minor currency units.
type ComputedOrderTotals struct {
	Currency currency.Unit
	// ShippingOptionID is the option actually charged, after any fallback to standard.
	ShippingOptionID string

	Subtotal     int64
	ShippingCost int64
	Tax          int64
	Discount     int64
	Total        int64
	Items        []PricedItem
}

type PricedItem struct {
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	Name         string
	Quantity     int
	UnitPrice    int64
	LineSubtotal int64
}
