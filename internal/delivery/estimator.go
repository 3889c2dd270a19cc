// Package delivery turns processing and shipping times into displayable delivery windows.
package delivery

import (
	"fmt"
	"time"

	"github.com/nikolayk812/checkout-core/internal/domain"
)

const (
	// EstimateBufferDays widens every regular estimate to express uncertainty.
	EstimateBufferDays = 2

	// BackorderBufferDays is wider because restock dates slip.
	BackorderBufferDays = 3
)

type Estimator struct {
	holidays HolidayCalendar
}

func NewEstimator(holidays HolidayCalendar) *Estimator {
	return &Estimator{holidays: holidays}
}

// IsBusinessDay reports whether t is neither a weekend day nor a listed holiday.
func (e *Estimator) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !e.holidays.Contains(t)
}

// AddBusinessDays counts n business days strictly after start and returns the landing date.
// The time of day is dropped. n == 0 returns start's date unchanged.
func (e *Estimator) AddBusinessDays(start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("%w: business days[%d] is negative", domain.ErrInvalidArgument, n)
	}

	day := civilDate(start)
	for counted := 0; counted < n; {
		day = day.AddDate(0, 0, 1)
		if e.IsBusinessDay(day) {
			counted++
		}
	}

	return day, nil
}

// CalculateDeliveryEstimates returns one window per option, in input order.
// Processing happens before shipping, then the regular buffer is added.
func (e *Estimator) CalculateDeliveryEstimates(ref time.Time, processingDays int, options []domain.ShippingOption) ([]domain.DeliveryEstimate, error) {
	estimates := make([]domain.DeliveryEstimate, 0, len(options))

	for _, option := range options {
		estimate, err := e.estimate(ref, processingDays, option.EstimatedBusinessDays, EstimateBufferDays)
		if err != nil {
			return nil, fmt.Errorf("shipping option[%s]: %w", option.ID, err)
		}

		estimate.ShippingOption = option
		estimates = append(estimates, estimate)
	}

	return estimates, nil
}

// CalculateBackorderDelivery anchors the window at the restock date and uses the backorder buffer.
func (e *Estimator) CalculateBackorderDelivery(restockDate time.Time, processingDays, shippingDays int) (domain.DeliveryEstimate, error) {
	estimate, err := e.estimate(restockDate, processingDays, shippingDays, BackorderBufferDays)
	if err != nil {
		return domain.DeliveryEstimate{}, fmt.Errorf("backorder: %w", err)
	}

	estimate.ShippingOption = domain.ShippingOption{EstimatedBusinessDays: shippingDays}
	return estimate, nil
}

// AdjustShippingDaysForLocation is the integration point for zone-aware shipping.
// Shipping days arriving here are already zone-adjusted upstream, so it returns baseDays.
func (e *Estimator) AdjustShippingDaysForLocation(baseDays int, _ domain.Location) int {
	return baseDays
}

func (e *Estimator) estimate(anchor time.Time, processingDays, shippingDays, bufferDays int) (domain.DeliveryEstimate, error) {
	processed, err := e.AddBusinessDays(anchor, processingDays)
	if err != nil {
		return domain.DeliveryEstimate{}, fmt.Errorf("processing: %w", err)
	}

	minDate, err := e.AddBusinessDays(processed, shippingDays)
	if err != nil {
		return domain.DeliveryEstimate{}, fmt.Errorf("shipping: %w", err)
	}

	maxDate, err := e.AddBusinessDays(minDate, bufferDays)
	if err != nil {
		return domain.DeliveryEstimate{}, fmt.Errorf("buffer: %w", err)
	}

	return domain.DeliveryEstimate{
		MinDate:        minDate,
		MaxDate:        maxDate,
		ProcessingDays: processingDays,
	}, nil
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
