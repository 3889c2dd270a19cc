// Package pricing computes authoritative, server-side order totals.
//
// The engine is a pure computation over its inputs and point-in-time catalog reads.
// It never reserves or decrements stock: two concurrent checkouts for the last unit
// can both pass the stock gate here. Persistence performs the conditional decrement
// at commit time and reports domain.ErrStockConflict.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/nikolayk812/checkout-core/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultLookupConcurrency = 8

type Request struct {
	Items            []domain.LineItem
	ShippingOptionID string
	PromoCode        string
	Country          string
}

type Engine struct {
	cfg       Config
	catalog   port.CatalogLookup
	discounts port.DiscountResolver
	logger    *slog.Logger

	lookupConcurrency int
}

type Option func(*Engine)

func WithDiscountResolver(r port.DiscountResolver) Option {
	return func(e *Engine) {
		e.discounts = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLookupConcurrency bounds the number of in-flight catalog lookups per call.
func WithLookupConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lookupConcurrency = n
		}
	}
}

func NewEngine(cfg Config, catalog port.CatalogLookup, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}

	e := &Engine{
		cfg:               cfg,
		catalog:           catalog,
		logger:            slog.Default(),
		lookupConcurrency: defaultLookupConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) ComputeOrderTotals(ctx context.Context, req Request) (domain.ComputedOrderTotals, error) {
	if len(req.Items) == 0 {
		return domain.ComputedOrderTotals{}, fmt.Errorf("%w: items are empty", domain.ErrInvalidRequest)
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.ComputedOrderTotals{}, fmt.Errorf("%w: item[%d] quantity[%d] must be positive",
				domain.ErrInvalidRequest, i, item.Quantity)
		}
		if item.ProductID == uuid.Nil {
			return domain.ComputedOrderTotals{}, fmt.Errorf("%w: item[%d] product id is empty", domain.ErrInvalidRequest, i)
		}
	}

	entries, lookupErrs := e.lookupAll(ctx, req.Items)

	totals := domain.ComputedOrderTotals{
		Currency: e.cfg.Currency,
		Items:    make([]domain.PricedItem, 0, len(req.Items)),
	}

	// Lookups run in parallel, but failures are reported for the earliest failing
	// item in input order, whether the lookup or the stock gate rejected it.
	for i, item := range req.Items {
		if err := lookupErrs[i]; err != nil {
			return domain.ComputedOrderTotals{}, fmt.Errorf("catalog.Lookup[%s]: %w", item.ProductID, err)
		}

		priced, err := e.priceItem(item, entries[i])
		if err != nil {
			return domain.ComputedOrderTotals{}, err
		}

		totals.Items = append(totals.Items, priced)
		totals.Subtotal += priced.LineSubtotal
	}

	var err error
	totals.ShippingOptionID, totals.ShippingCost, err = e.shippingCost(req.ShippingOptionID, req.Country, totals.Subtotal)
	if err != nil {
		return domain.ComputedOrderTotals{}, err
	}

	totals.Discount, err = e.discount(ctx, req.PromoCode, totals.Subtotal)
	if err != nil {
		return domain.ComputedOrderTotals{}, err
	}

	taxable := decimal.NewFromInt(totals.Subtotal + totals.ShippingCost)
	totals.Tax = domain.RoundMinor(taxable.Mul(e.cfg.VATRate))

	totals.Total = totals.Subtotal + totals.ShippingCost + totals.Tax - totals.Discount
	if totals.Total < 0 {
		return domain.ComputedOrderTotals{}, fmt.Errorf("%w: total[%d] is negative, discount[%d]",
			domain.ErrInvalidState, totals.Total, totals.Discount)
	}

	return totals, nil
}

// lookupAll issues independent catalog reads. Entries and errors are indexed by input position.
func (e *Engine) lookupAll(ctx context.Context, items []domain.LineItem) ([]domain.CatalogEntry, []error) {
	entries := make([]domain.CatalogEntry, len(items))
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(e.lookupConcurrency)

	for i, item := range items {
		g.Go(func() error {
			entries[i], errs[i] = e.catalog.Lookup(ctx, item.ProductID, item.VariantID)
			return nil
		})
	}
	_ = g.Wait()

	return entries, errs
}

func (e *Engine) priceItem(item domain.LineItem, entry domain.CatalogEntry) (domain.PricedItem, error) {
	if entry.BasePrice.Currency != e.cfg.Currency {
		return domain.PricedItem{}, fmt.Errorf("%w: product %s priced in %s, checkout currency is %s",
			domain.ErrInvalidState, entry.ProductID, entry.BasePrice.Currency, e.cfg.Currency)
	}

	var variantID *uuid.UUID
	if entry.Variant != nil {
		id := entry.Variant.ID
		variantID = &id
	}

	if available := entry.AvailableStock(); available < item.Quantity {
		return domain.PricedItem{}, &domain.InsufficientStockError{
			ProductID: item.ProductID,
			VariantID: variantID,
			Name:      entry.Name,
			Requested: item.Quantity,
			Available: available,
		}
	}

	unitPrice := entry.UnitPrice().MinorUnits()
	if unitPrice < 0 {
		return domain.PricedItem{}, fmt.Errorf("%w: product %s unit price[%d] is negative",
			domain.ErrInvalidState, entry.ProductID, unitPrice)
	}

	return domain.PricedItem{
		ProductID:    item.ProductID,
		VariantID:    variantID,
		Name:         entry.Name,
		Quantity:     item.Quantity,
		UnitPrice:    unitPrice,
		LineSubtotal: unitPrice * int64(item.Quantity),
	}, nil
}

// shippingCost returns the option id actually charged along with its cost.
func (e *Engine) shippingCost(optionID, country string, subtotal int64) (string, int64, error) {
	rate, ok := e.cfg.Rates.Rate(optionID, country)
	if !ok {
		if e.cfg.StrictShippingOptions {
			return "", 0, fmt.Errorf("%w: shipping option[%s]", domain.ErrNotFound, optionID)
		}

		e.logger.Warn("unknown shipping option, charging standard rate",
			slog.String("shipping_option_id", optionID),
			slog.String("country", country))

		optionID = domain.StandardShipping
		rate, _ = e.cfg.Rates.Rate(optionID, country)
	}

	if optionID == domain.StandardShipping && subtotal >= e.cfg.FreeShippingThreshold {
		return optionID, 0, nil
	}

	return optionID, rate, nil
}

func (e *Engine) discount(ctx context.Context, code string, subtotal int64) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" || e.discounts == nil {
		return 0, nil
	}

	discount, err := e.discounts.ResolveDiscount(ctx, code, subtotal)
	if err != nil {
		return 0, fmt.Errorf("discounts.ResolveDiscount[%s]: %w", code, err)
	}
	if discount < 0 {
		return 0, fmt.Errorf("%w: discount[%d] for code %s is negative", domain.ErrInvalidState, discount, code)
	}

	return discount, nil
}
