package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineItem struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// CatalogEntry is a point-in-time read of a product and, optionally, one of its variants.
type CatalogEntry struct {
	ProductID uuid.UUID
	Name      string
	BasePrice Money
	Stock     int

	Variant *CatalogVariant
}

type CatalogVariant struct {
	ID            uuid.UUID
	Name          string
	PriceModifier decimal.Decimal
	Stock         int
}

// AvailableStock is the variant stock when a variant was resolved, else the product stock.
func (e CatalogEntry) AvailableStock() int {
	if e.Variant != nil {
		return e.Variant.Stock
	}
	return e.Stock
}

// UnitPrice is the base price plus the variant modifier, in base price currency.
func (e CatalogEntry) UnitPrice() Money {
	if e.Variant != nil {
		return Money{Amount: e.BasePrice.Amount.Add(e.Variant.PriceModifier), Currency: e.BasePrice.Currency}
	}
	return e.BasePrice
}
