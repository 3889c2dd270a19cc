package domain

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

type OrderStatus string

// Orders are created pending; later transitions belong to payment and fulfilment.
const OrderStatusPending OrderStatus = "PENDING"

type Order struct {
	ID               uuid.UUID
	CustomerID       string
	Status           OrderStatus
	Currency         currency.Unit
	ShippingOptionID string
	PromoCode        string
	Subtotal         int64
	ShippingCost     int64
	Tax              int64
	Discount         int64
	Total            int64
	Items            []OrderItem

	EstimatedDeliveryFrom *time.Time
	EstimatedDeliveryTo   *time.Time

	CreatedAt time.Time
}

type OrderItem struct {
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	Name         string
	Quantity     int
	UnitPrice    int64
	LineSubtotal int64
}

// NewOrder builds a pending order record from freshly computed totals.
func NewOrder(customerID, shippingOptionID, promoCode string, totals ComputedOrderTotals) Order {
	items := make([]OrderItem, 0, len(totals.Items))
	for _, it := range totals.Items {
		items = append(items, OrderItem{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			LineSubtotal: it.LineSubtotal,
		})
	}

	return Order{
		ID:               uuid.New(),
		CustomerID:       customerID,
		Status:           OrderStatusPending,
		Currency:         totals.Currency,
		ShippingOptionID: shippingOptionID,
		PromoCode:        promoCode,
		Subtotal:         totals.Subtotal,
		ShippingCost:     totals.ShippingCost,
		Tax:              totals.Tax,
		Discount:         totals.Discount,
		Total:            totals.Total,
		Items:            items,
	}
}
