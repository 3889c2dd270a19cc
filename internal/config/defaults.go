package config

import (
	"time"

	"github.com/nikolayk812/checkout-core/internal/domain"
)

func Default() Config {
	return Config{
		HTTP: HTTP{
			Port:            "8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: Database{
			MigrationsDir: "./migrations",
		},
		Log: Log{
			Level: "info",
		},
		Pricing: Pricing{
			Currency:              "GBP",
			VATRate:               "0.20",
			FreeShippingThreshold: 2500,
			Rates: map[string]int64{
				domain.StandardShipping: 490,
				"express":               990,
				"next_day":              1490,
			},
		},
		Delivery: Delivery{
			ProcessingDays: 1,
			Holidays:       ukBankHolidays(),
		},
		ShippingOptions: []domain.ShippingOption{
			{ID: domain.StandardShipping, Name: "Standard delivery", Price: 490, EstimatedBusinessDays: 3, Description: "Free on orders over £25"},
			{ID: "express", Name: "Express delivery", Price: 990, EstimatedBusinessDays: 1, Description: "Tracked, 1-2 business days"},
			{ID: "next_day", Name: "Next day delivery", Price: 1490, EstimatedBusinessDays: 0, Description: "Order before 2pm"},
		},
	}
}

// England and Wales bank holidays.
func ukBankHolidays() []string {
	return []string{
		"2024-01-01", "2024-03-29", "2024-04-01", "2024-05-06", "2024-05-27", "2024-08-26", "2024-12-25", "2024-12-26",
		"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-05", "2025-05-26", "2025-08-25", "2025-12-25", "2025-12-26",
		"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-04", "2026-05-25", "2026-08-31", "2026-12-25", "2026-12-28",
	}
}
