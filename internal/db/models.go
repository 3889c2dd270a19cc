package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
}

type ProductVariant struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Name          string
	PriceModifier decimal.Decimal
	Stock         int32
}

type PromoCode struct {
	Code        string
	Kind        string
	Value       decimal.Decimal
	MinSubtotal int64
	Active      bool
	ExpiresAt   *time.Time
}

type Order struct {
	ID                    uuid.UUID
	CustomerID            string
	Status                string
	Currency              string
	ShippingOptionID      string
	PromoCode             string
	Subtotal              int64
	ShippingCost          int64
	Tax                   int64
	Discount              int64
	Total                 int64
	EstimatedDeliveryFrom *time.Time
	EstimatedDeliveryTo   *time.Time
	CreatedAt             time.Time
}

type OrderItem struct {
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	Name         string
	Quantity     int32
	UnitPrice    int64
	LineSubtotal int64
}
