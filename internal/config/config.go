// Package config loads service configuration from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/checkout-core/internal/delivery"
	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/nikolayk812/checkout-core/internal/pricing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP            HTTP                    `yaml:"http"`
	Database        Database                `yaml:"database"`
	Log             Log                     `yaml:"log"`
	Pricing         Pricing                 `yaml:"pricing"`
	Delivery        Delivery                `yaml:"delivery"`
	ShippingOptions []domain.ShippingOption `yaml:"shipping_options"`
}

type HTTP struct {
	Port            string        `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type Database struct {
	URL           string `yaml:"url"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Pricing struct {
	Currency              string                      `yaml:"currency"`
	VATRate               string                      `yaml:"vat_rate"`
	FreeShippingThreshold int64                       `yaml:"free_shipping_threshold"`
	StrictShippingOptions bool                        `yaml:"strict_shipping_options"`
	Rates                 map[string]int64            `yaml:"rates"`
	CountryRates          map[string]map[string]int64 `yaml:"country_rates"`
}

type Delivery struct {
	ProcessingDays int      `yaml:"processing_days"`
	Holidays       []string `yaml:"holidays"`
}

// Load reads path (optional) over the defaults and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		}
		if err := replaceListedRates(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("replaceListedRates: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("applyEnv: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

// replaceListedRates drops the default rate table when the file lists one,
// since yaml.v3 merges into an existing map instead of replacing it.
func replaceListedRates(data []byte, cfg *Config) error {
	var listed struct {
		Pricing struct {
			Rates map[string]int64 `yaml:"rates"`
		} `yaml:"pricing"`
	}
	if err := yaml.Unmarshal(data, &listed); err != nil {
		return fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	if listed.Pricing.Rates != nil {
		cfg.Pricing.Rates = nil
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Port = getEnv("HTTP_PORT", c.HTTP.Port)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MigrationsDir = getEnv("MIGRATIONS_DIR", c.Database.MigrationsDir)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Pricing.VATRate = getEnv("VAT_RATE", c.Pricing.VATRate)

	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FREE_SHIPPING_THRESHOLD[%s]: %w", v, err)
		}
		c.Pricing.FreeShippingThreshold = threshold
	}

	return nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("http.port is empty"))
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, errors.New("http.request_timeout must be positive"))
	}
	if c.Delivery.ProcessingDays < 0 {
		errs = append(errs, fmt.Errorf("delivery.processing_days[%d] is negative", c.Delivery.ProcessingDays))
	}
	if len(c.ShippingOptions) == 0 {
		errs = append(errs, errors.New("shipping_options is empty"))
	}
	for _, opt := range c.ShippingOptions {
		if opt.ID == "" {
			errs = append(errs, errors.New("shipping_options: id is empty"))
		}
		if opt.EstimatedBusinessDays < 0 {
			errs = append(errs, fmt.Errorf("shipping_options[%s]: estimated_business_days is negative", opt.ID))
		}
	}

	if _, err := c.PricingConfig(); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}
	if _, err := c.HolidayCalendar(); err != nil {
		errs = append(errs, fmt.Errorf("delivery: %w", err))
	}

	return errors.Join(errs...)
}

func (c Config) PricingConfig() (pricing.Config, error) {
	unit, err := currency.ParseISO(c.Pricing.Currency)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("currency[%s] is not valid: %w", c.Pricing.Currency, err)
	}

	vat, err := decimal.NewFromString(c.Pricing.VATRate)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("vat_rate[%s] is not valid: %w", c.Pricing.VATRate, err)
	}

	cfg := pricing.Config{
		Currency:              unit,
		VATRate:               vat,
		FreeShippingThreshold: c.Pricing.FreeShippingThreshold,
		StrictShippingOptions: c.Pricing.StrictShippingOptions,
		Rates: pricing.ShippingRates{
			Default:   c.Pricing.Rates,
			ByCountry: normalizeCountries(c.Pricing.CountryRates),
		},
	}

	if err := cfg.Validate(); err != nil {
		return pricing.Config{}, err
	}

	return cfg, nil
}

func (c Config) HolidayCalendar() (delivery.HolidayCalendar, error) {
	return delivery.NewHolidayCalendar(c.Delivery.Holidays)
}

func (c Config) ShippingOption(id string) (domain.ShippingOption, bool) {
	for _, opt := range c.ShippingOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return domain.ShippingOption{}, false
}

func normalizeCountries(in map[string]map[string]int64) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(in))
	for country, table := range in {
		out[strings.ToUpper(country)] = table
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
