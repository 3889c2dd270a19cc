package domain

import "time"

const StandardShipping = "standard"

type ShippingOption struct {
	ID                    string `yaml:"id"`
	Name                  string `yaml:"name"`
	Price                 int64  `yaml:"price"` // informational, authoritative cost comes from the rate table
	EstimatedBusinessDays int    `yaml:"estimated_business_days"`
	Description           string `yaml:"description"`
}

type DeliveryEstimate struct {
	MinDate        time.Time
	MaxDate        time.Time
	ShippingOption ShippingOption
	ProcessingDays int
}

// Location is the destination used for zone-aware shipping adjustments.
type Location struct {
	Country    string
	PostalCode string
}
