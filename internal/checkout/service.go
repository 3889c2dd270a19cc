// Package checkout composes pricing, delivery estimation and order persistence
// for checkout request handlers.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/delivery"
	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/nikolayk812/checkout-core/internal/metrics"
	"github.com/nikolayk812/checkout-core/internal/port"
	"github.com/nikolayk812/checkout-core/internal/pricing"
)

type TotalsCalculator interface {
	ComputeOrderTotals(ctx context.Context, req pricing.Request) (domain.ComputedOrderTotals, error)
}

type Request struct {
	CustomerID       string
	Items            []domain.LineItem
	ShippingOptionID string
	PromoCode        string
	Destination      domain.Location
}

type Quote struct {
	Totals    domain.ComputedOrderTotals
	Estimates []domain.DeliveryEstimate
}

type Config struct {
	ProcessingDays  int
	ShippingOptions []domain.ShippingOption
}

type Service struct {
	cfg       Config
	totals    TotalsCalculator
	estimator *delivery.Estimator
	orders    port.OrderRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(cfg Config, totals TotalsCalculator, estimator *delivery.Estimator, orders port.OrderRepository,
	m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		totals:    totals,
		estimator: estimator,
		orders:    orders,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Quote prices the cart and estimates delivery for every shipping option without persisting anything.
func (s *Service) Quote(ctx context.Context, req Request) (_ Quote, err error) {
	defer func() { s.observe(ctx, "quote", err) }()

	totals, err := s.totals.ComputeOrderTotals(ctx, pricingRequest(req))
	if err != nil {
		return Quote{}, fmt.Errorf("totals.ComputeOrderTotals: %w", err)
	}

	estimates, err := s.DeliveryEstimates(req.Destination)
	if err != nil {
		return Quote{}, fmt.Errorf("DeliveryEstimates: %w", err)
	}

	return Quote{Totals: totals, Estimates: estimates}, nil
}

// PlaceOrder recomputes totals server-side and persists a pending order.
// Persistence decrements stock atomically, so a concurrent checkout that won
// the last unit surfaces here as domain.ErrStockConflict.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (_ domain.Order, err error) {
	defer func() { s.observe(ctx, "place_order", err) }()

	if req.CustomerID == "" {
		return domain.Order{}, fmt.Errorf("%w: customer id is empty", domain.ErrInvalidRequest)
	}

	totals, err := s.totals.ComputeOrderTotals(ctx, pricingRequest(req))
	if err != nil {
		return domain.Order{}, fmt.Errorf("totals.ComputeOrderTotals: %w", err)
	}

	order := domain.NewOrder(req.CustomerID, totals.ShippingOptionID, req.PromoCode, totals)

	if option, ok := s.shippingOption(totals.ShippingOptionID); ok {
		estimates, err := s.estimate(req.Destination, option)
		if err != nil {
			return domain.Order{}, fmt.Errorf("estimate: %w", err)
		}
		order.EstimatedDeliveryFrom = &estimates[0].MinDate
		order.EstimatedDeliveryTo = &estimates[0].MaxDate
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("orders.CreateOrder: %w", err)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("customer_id", order.CustomerID),
		slog.Int64("total", order.Total),
		slog.Int("items", len(order.Items)))

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}
	return order, nil
}

// DeliveryEstimates returns a window per configured shipping option, in configuration order.
func (s *Service) DeliveryEstimates(destination domain.Location) ([]domain.DeliveryEstimate, error) {
	return s.estimate(destination, s.cfg.ShippingOptions...)
}

func (s *Service) BackorderEstimate(restockDate time.Time, shippingOptionID string, destination domain.Location) (domain.DeliveryEstimate, error) {
	option, ok := s.shippingOption(shippingOptionID)
	if !ok {
		return domain.DeliveryEstimate{}, fmt.Errorf("%w: shipping option[%s]", domain.ErrNotFound, shippingOptionID)
	}

	shippingDays := s.estimator.AdjustShippingDaysForLocation(option.EstimatedBusinessDays, destination)

	estimate, err := s.estimator.CalculateBackorderDelivery(restockDate, s.cfg.ProcessingDays, shippingDays)
	if err != nil {
		return domain.DeliveryEstimate{}, fmt.Errorf("estimator.CalculateBackorderDelivery: %w", err)
	}

	option.EstimatedBusinessDays = shippingDays
	estimate.ShippingOption = option

	return estimate, nil
}

func (s *Service) estimate(destination domain.Location, options ...domain.ShippingOption) ([]domain.DeliveryEstimate, error) {
	adjusted := make([]domain.ShippingOption, 0, len(options))
	for _, opt := range options {
		opt.EstimatedBusinessDays = s.estimator.AdjustShippingDaysForLocation(opt.EstimatedBusinessDays, destination)
		adjusted = append(adjusted, opt)
	}

	estimates, err := s.estimator.CalculateDeliveryEstimates(s.now(), s.cfg.ProcessingDays, adjusted)
	if err != nil {
		return nil, fmt.Errorf("estimator.CalculateDeliveryEstimates: %w", err)
	}

	return estimates, nil
}

func (s *Service) shippingOption(id string) (domain.ShippingOption, bool) {
	for _, opt := range s.cfg.ShippingOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return domain.ShippingOption{}, false
}

func (s *Service) observe(ctx context.Context, operation string, err error) {
	s.metrics.ObserveOperation(operation, err)

	if err == nil {
		return
	}

	attrs := []any{slog.String("operation", operation), slog.String("error", err.Error())}
	if isDefect(err) {
		s.logger.ErrorContext(ctx, "checkout defect", attrs...)
		return
	}
	s.logger.InfoContext(ctx, "checkout rejected", attrs...)
}

// isDefect reports errors that indicate a bug or misconfiguration rather than a user-facing condition.
func isDefect(err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrInvalidArgument):
		return true
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrStockConflict):
		return false
	default:
		return true
	}
}

func pricingRequest(req Request) pricing.Request {
	return pricing.Request{
		Items:            req.Items,
		ShippingOptionID: req.ShippingOptionID,
		PromoCode:        req.PromoCode,
		Country:          req.Destination.Country,
	}
}
