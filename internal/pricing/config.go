package pricing

import (
	"fmt"
	"strings"

	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Config struct {
	Currency              currency.Unit
	VATRate               decimal.Decimal
	FreeShippingThreshold int64 // minor units, inclusive
	Rates                 ShippingRates

	// StrictShippingOptions rejects unknown shipping option ids instead of charging the standard rate.
	StrictShippingOptions bool
}

// ShippingRates maps shipping option ids to costs in minor units.
// Country tables override Default per option id.
type ShippingRates struct {
	Default   map[string]int64
	ByCountry map[string]map[string]int64
}

func (r ShippingRates) Rate(optionID, country string) (int64, bool) {
	if table, ok := r.ByCountry[strings.ToUpper(country)]; ok {
		if rate, ok := table[optionID]; ok {
			return rate, true
		}
	}
	rate, ok := r.Default[optionID]
	return rate, ok
}

func (c Config) Validate() error {
	if c.VATRate.IsNegative() {
		return fmt.Errorf("vat rate[%s] is negative", c.VATRate)
	}
	if c.FreeShippingThreshold < 0 {
		return fmt.Errorf("free shipping threshold[%d] is negative", c.FreeShippingThreshold)
	}
	if _, ok := c.Rates.Default[domain.StandardShipping]; !ok {
		return fmt.Errorf("shipping rates: %q rate is missing", domain.StandardShipping)
	}
	for id, rate := range c.Rates.Default {
		if rate < 0 {
			return fmt.Errorf("shipping rate[%s] is negative", id)
		}
	}
	for country, table := range c.Rates.ByCountry {
		for id, rate := range table {
			if rate < 0 {
				return fmt.Errorf("shipping rate[%s/%s] is negative", country, id)
			}
		}
	}
	return nil
}
