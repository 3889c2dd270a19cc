package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/checkout"
	"github.com/nikolayk812/checkout-core/internal/domain"
)

type LineItemDTO struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

type LocationDTO struct {
	Country    string `json:"country"`
	PostalCode string `json:"postal_code,omitempty"`
}

type CheckoutRequestDTO struct {
	CustomerID       string        `json:"customer_id"`
	Items            []LineItemDTO `json:"items"`
	ShippingOptionID string        `json:"shipping_option_id"`
	PromoCode        string        `json:"promo_code,omitempty"`
	Destination      LocationDTO   `json:"destination"`
}

type PricedItemDTO struct {
	ProductID    uuid.UUID  `json:"product_id"`
	VariantID    *uuid.UUID `json:"variant_id,omitempty"`
	Name         string     `json:"name"`
	Quantity     int        `json:"quantity"`
	UnitPrice    int64      `json:"unit_price"`
	LineSubtotal int64      `json:"line_subtotal"`
}

type TotalsDTO struct {
	Currency         string          `json:"currency"`
	ShippingOptionID string          `json:"shipping_option_id"`
	Subtotal         int64           `json:"subtotal"`
	ShippingCost     int64           `json:"shipping_cost"`
	Tax              int64           `json:"tax"`
	Discount         int64           `json:"discount"`
	Total            int64           `json:"total"`
	Items            []PricedItemDTO `json:"items"`
}

type ShippingOptionDTO struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Price                 int64  `json:"price"`
	EstimatedBusinessDays int    `json:"estimated_business_days"`
	Description           string `json:"description,omitempty"`
}

type DeliveryEstimateDTO struct {
	ShippingOption ShippingOptionDTO `json:"shipping_option"`
	MinDate        string            `json:"min_date"`
	MaxDate        string            `json:"max_date"`
	ProcessingDays int               `json:"processing_days"`
}

type QuoteResponseDTO struct {
	Totals    TotalsDTO             `json:"totals"`
	Estimates []DeliveryEstimateDTO `json:"delivery_estimates"`
}

type OrderResponseDTO struct {
	ID                    string          `json:"id"`
	CustomerID            string          `json:"customer_id"`
	Status                string          `json:"status"`
	Currency              string          `json:"currency"`
	ShippingOptionID      string          `json:"shipping_option_id"`
	PromoCode             string          `json:"promo_code,omitempty"`
	Subtotal              int64           `json:"subtotal"`
	ShippingCost          int64           `json:"shipping_cost"`
	Tax                   int64           `json:"tax"`
	Discount              int64           `json:"discount"`
	Total                 int64           `json:"total"`
	Items                 []PricedItemDTO `json:"items"`
	EstimatedDeliveryFrom string          `json:"estimated_delivery_from,omitempty"`
	EstimatedDeliveryTo   string          `json:"estimated_delivery_to,omitempty"`
	CreatedAt             *time.Time      `json:"created_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type InsufficientStockDetails struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Requested int        `json:"requested"`
	Available int        `json:"available"`
}

func (r CheckoutRequestDTO) toDomain() checkout.Request {
	items := make([]domain.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}

	return checkout.Request{
		CustomerID:       r.CustomerID,
		Items:            items,
		ShippingOptionID: r.ShippingOptionID,
		PromoCode:        r.PromoCode,
		Destination:      r.Destination.toDomain(),
	}
}

func (l LocationDTO) toDomain() domain.Location {
	return domain.Location{Country: l.Country, PostalCode: l.PostalCode}
}

func mapTotals(t domain.ComputedOrderTotals) TotalsDTO {
	items := make([]PricedItemDTO, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, PricedItemDTO{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			LineSubtotal: it.LineSubtotal,
		})
	}

	return TotalsDTO{
		Currency:         t.Currency.String(),
		ShippingOptionID: t.ShippingOptionID,
		Subtotal:         t.Subtotal,
		ShippingCost:     t.ShippingCost,
		Tax:              t.Tax,
		Discount:         t.Discount,
		Total:            t.Total,
		Items:            items,
	}
}

func mapEstimate(e domain.DeliveryEstimate) DeliveryEstimateDTO {
	return DeliveryEstimateDTO{
		ShippingOption: ShippingOptionDTO{
			ID:                    e.ShippingOption.ID,
			Name:                  e.ShippingOption.Name,
			Price:                 e.ShippingOption.Price,
			EstimatedBusinessDays: e.ShippingOption.EstimatedBusinessDays,
			Description:           e.ShippingOption.Description,
		},
		MinDate:        e.MinDate.Format(time.DateOnly),
		MaxDate:        e.MaxDate.Format(time.DateOnly),
		ProcessingDays: e.ProcessingDays,
	}
}

func mapEstimates(estimates []domain.DeliveryEstimate) []DeliveryEstimateDTO {
	out := make([]DeliveryEstimateDTO, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, mapEstimate(e))
	}
	return out
}

func mapOrder(o domain.Order) OrderResponseDTO {
	items := make([]PricedItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, PricedItemDTO{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			LineSubtotal: it.LineSubtotal,
		})
	}

	dto := OrderResponseDTO{
		ID:               o.ID.String(),
		CustomerID:       o.CustomerID,
		Status:           string(o.Status),
		Currency:         o.Currency.String(),
		ShippingOptionID: o.ShippingOptionID,
		PromoCode:        o.PromoCode,
		Subtotal:         o.Subtotal,
		ShippingCost:     o.ShippingCost,
		Tax:              o.Tax,
		Discount:         o.Discount,
		Total:            o.Total,
		Items:            items,
	}
	if o.EstimatedDeliveryFrom != nil {
		dto.EstimatedDeliveryFrom = o.EstimatedDeliveryFrom.Format(time.DateOnly)
	}
	if o.EstimatedDeliveryTo != nil {
		dto.EstimatedDeliveryTo = o.EstimatedDeliveryTo.Format(time.DateOnly)
	}
	if !o.CreatedAt.IsZero() {
		createdAt := o.CreatedAt
		dto.CreatedAt = &createdAt
	}

	return dto
}
