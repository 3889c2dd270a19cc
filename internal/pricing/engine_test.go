package pricing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/nikolayk812/checkout-core/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.CatalogEntry
	variants map[uuid.UUID]domain.CatalogVariant
	err      error
	calls    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[uuid.UUID]domain.CatalogEntry),
		variants: make(map[uuid.UUID]domain.CatalogVariant),
	}
}

func (c *fakeCatalog) addProduct(name, price string, stock int) uuid.UUID {
	id := uuid.New()
	c.products[id] = domain.CatalogEntry{
		ProductID: id,
		Name:      name,
		BasePrice: domain.Money{Amount: decimal.RequireFromString(price), Currency: currency.GBP},
		Stock:     stock,
	}
	return id
}

func (c *fakeCatalog) addVariant(name, modifier string, stock int) uuid.UUID {
	id := uuid.New()
	c.variants[id] = domain.CatalogVariant{
		ID:            id,
		Name:          name,
		PriceModifier: decimal.RequireFromString(modifier),
		Stock:         stock,
	}
	return id
}

func (c *fakeCatalog) Lookup(_ context.Context, productID uuid.UUID, variantID *uuid.UUID) (domain.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if c.err != nil {
		return domain.CatalogEntry{}, c.err
	}

	entry, ok := c.products[productID]
	if !ok {
		return domain.CatalogEntry{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if variantID != nil {
		if v, ok := c.variants[*variantID]; ok {
			entry.Variant = &v
		}
	}
	return entry, nil
}

type fakeDiscounts struct {
	discount int64
	err      error
}

func (d fakeDiscounts) ResolveDiscount(context.Context, string, int64) (int64, error) {
	return d.discount, d.err
}

func testConfig() pricing.Config {
	return pricing.Config{
		Currency:              currency.GBP,
		VATRate:               decimal.RequireFromString("0.20"),
		FreeShippingThreshold: 2500,
		Rates: pricing.ShippingRates{
			Default: map[string]int64{
				"standard": 490,
				"express":  990,
				"pickup":   0,
			},
			ByCountry: map[string]map[string]int64{
				"IE": {"standard": 790},
			},
		},
	}
}

func newEngine(t *testing.T, cfg pricing.Config, catalog *fakeCatalog, opts ...pricing.Option) *pricing.Engine {
	t.Helper()

	engine, err := pricing.NewEngine(cfg, catalog, opts...)
	require.NoError(t, err)

	return engine
}

func TestComputeOrderTotals_Scenarios(t *testing.T) {
	catalog := newFakeCatalog()
	productA := catalog.addProduct("Product A", "10.00", 3)
	engine := newEngine(t, testConfig(), catalog)

	tests := []struct {
		name     string
		quantity int
		want     domain.ComputedOrderTotals
	}{
		{
			name:     "below free shipping threshold: ok",
			quantity: 2,
			want: domain.ComputedOrderTotals{
				Currency:         currency.GBP,
				ShippingOptionID: "standard",
				Subtotal:     2000,
				ShippingCost: 490,
				Tax:          498,
				Total:        2988,
				Items: []domain.PricedItem{
					{ProductID: productA, Name: "Product A", Quantity: 2, UnitPrice: 1000, LineSubtotal: 2000},
				},
			},
		},
		{
			name:     "above free shipping threshold: ok",
			quantity: 3,
			want: domain.ComputedOrderTotals{
				Currency:         currency.GBP,
				ShippingOptionID: "standard",
				Subtotal:     3000,
				ShippingCost: 0,
				Tax:          600,
				Total:        3600,
				Items: []domain.PricedItem{
					{ProductID: productA, Name: "Product A", Quantity: 3, UnitPrice: 1000, LineSubtotal: 3000},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
				Items:            []domain.LineItem{{ProductID: productA, Quantity: tt.quantity}},
				ShippingOptionID: "standard",
			})
			require.NoError(t, err)

			assertTotals(t, tt.want, got)
		})
	}
}

func TestComputeOrderTotals_InsufficientStock(t *testing.T) {
	catalog := newFakeCatalog()
	productA := catalog.addProduct("Product A", "10.00", 3)
	engine := newEngine(t, testConfig(), catalog)

	_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items:            []domain.LineItem{{ProductID: productA, Quantity: 5}},
		ShippingOptionID: "standard",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, productA, stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)
	assert.Contains(t, err.Error(), "Product A")
	assert.Contains(t, err.Error(), "requested=5, available=3")
}

func TestComputeOrderTotals_StockGateLeavesCatalogUntouched(t *testing.T) {
	catalog := newFakeCatalog()
	inStock := catalog.addProduct("In stock", "5.00", 10)
	scarce := catalog.addProduct("Scarce", "5.00", 1)
	engine := newEngine(t, testConfig(), catalog)

	_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items: []domain.LineItem{
			{ProductID: inStock, Quantity: 4},
			{ProductID: scarce, Quantity: 2},
		},
		ShippingOptionID: "standard",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, catalog.products[inStock].Stock)
	assert.Equal(t, 1, catalog.products[scarce].Stock)
}

// The stock gate is per item: repeated lines for one product are not summed
// and nothing is reserved. Overselling is caught at commit time by persistence.
func TestComputeOrderTotals_StockCheckIsPerItem(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Last units", "1.00", 2)
	engine := newEngine(t, testConfig(), catalog)

	got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items: []domain.LineItem{
			{ProductID: product, Quantity: 2},
			{ProductID: product, Quantity: 2},
		},
		ShippingOptionID: "standard",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(400), got.Subtotal)
	assert.Equal(t, 2, catalog.products[product].Stock)
}

func TestComputeOrderTotals_Errors(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Product", "10.00", 5)
	engine := newEngine(t, testConfig(), catalog)

	tests := []struct {
		name    string
		items   []domain.LineItem
		wantErr error
	}{
		{
			name:    "empty items: error",
			items:   nil,
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "zero quantity: error",
			items:   []domain.LineItem{{ProductID: product, Quantity: 0}},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "nil product id: error",
			items:   []domain.LineItem{{ProductID: uuid.Nil, Quantity: 1}},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "unknown product: not found",
			items:   []domain.LineItem{{ProductID: product, Quantity: 1}, {ProductID: uuid.New(), Quantity: 1}},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
				Items:            tt.items,
				ShippingOptionID: "standard",
			})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComputeOrderTotals_EarliestFailingItemDecides(t *testing.T) {
	catalog := newFakeCatalog()
	scarce := catalog.addProduct("Scarce", "5.00", 1)
	unknown := uuid.New()
	engine := newEngine(t, testConfig(), catalog)

	tests := []struct {
		name    string
		items   []domain.LineItem
		wantErr error
	}{
		{
			name:    "stock shortfall before unknown product: insufficient stock",
			items:   []domain.LineItem{{ProductID: scarce, Quantity: 5}, {ProductID: unknown, Quantity: 1}},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name:    "unknown product before stock shortfall: not found",
			items:   []domain.LineItem{{ProductID: unknown, Quantity: 1}, {ProductID: scarce, Quantity: 5}},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
				Items:            tt.items,
				ShippingOptionID: "standard",
			})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items:            []domain.LineItem{{ProductID: scarce, Quantity: 5}, {ProductID: unknown, Quantity: 1}},
		ShippingOptionID: "standard",
	})
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestComputeOrderTotals_CatalogFailure(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Product", "10.00", 5)
	catalog.err = errors.New("connection reset")
	engine := newEngine(t, testConfig(), catalog)

	_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
		ShippingOptionID: "standard",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestComputeOrderTotals_FreeShippingBoundary(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		optionID     string
		wantShipping int64
	}{
		{name: "standard exactly at threshold: free", price: "25.00", optionID: "standard", wantShipping: 0},
		{name: "standard one penny below threshold: charged", price: "24.99", optionID: "standard", wantShipping: 490},
		{name: "express above threshold: charged", price: "30.00", optionID: "express", wantShipping: 990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newFakeCatalog()
			product := catalog.addProduct("Product", tt.price, 1)
			engine := newEngine(t, testConfig(), catalog)

			got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
				Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
				ShippingOptionID: tt.optionID,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantShipping, got.ShippingCost)
		})
	}
}

func TestComputeOrderTotals_ShippingOptionResolution(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Product", "10.00", 1)

	t.Run("unknown option falls back to standard: ok", func(t *testing.T) {
		engine := newEngine(t, testConfig(), catalog)

		got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
			Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
			ShippingOptionID: "standrd",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(490), got.ShippingCost)
		assert.Equal(t, "standard", got.ShippingOptionID)
	})

	t.Run("unknown option in strict mode: not found", func(t *testing.T) {
		cfg := testConfig()
		cfg.StrictShippingOptions = true
		engine := newEngine(t, cfg, catalog)

		_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
			Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
			ShippingOptionID: "standrd",
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("country override: ok", func(t *testing.T) {
		engine := newEngine(t, testConfig(), catalog)

		got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
			Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
			ShippingOptionID: "standard",
			Country:          "IE",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(790), got.ShippingCost)
	})

	t.Run("country without override uses default table: ok", func(t *testing.T) {
		engine := newEngine(t, testConfig(), catalog)

		got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
			Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
			ShippingOptionID: "express",
			Country:          "IE",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(990), got.ShippingCost)
	})
}

func TestComputeOrderTotals_VariantPriceModifier(t *testing.T) {
	tests := []struct {
		name          string
		modifier      string
		variantStock  int
		quantity      int
		wantUnitPrice int64
		wantErr       error
	}{
		{name: "positive modifier: ok", modifier: "2.50", variantStock: 5, quantity: 1, wantUnitPrice: 1250},
		{name: "negative modifier: ok", modifier: "-1.25", variantStock: 5, quantity: 1, wantUnitPrice: 875},
		{name: "zero modifier: ok", modifier: "0", variantStock: 5, quantity: 1, wantUnitPrice: 1000},
		{name: "variant stock gates, not product stock: error", modifier: "0", variantStock: 1, quantity: 2, wantErr: domain.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newFakeCatalog()
			product := catalog.addProduct("Shirt", "10.00", 100)
			variant := catalog.addVariant("XL", tt.modifier, tt.variantStock)
			engine := newEngine(t, testConfig(), catalog)

			got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
				Items:            []domain.LineItem{{ProductID: product, VariantID: &variant, Quantity: tt.quantity}},
				ShippingOptionID: "standard",
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				var stockErr *domain.InsufficientStockError
				require.ErrorAs(t, err, &stockErr)
				require.NotNil(t, stockErr.VariantID)
				assert.Equal(t, variant, *stockErr.VariantID)
				return
			}
			require.NoError(t, err)

			require.Len(t, got.Items, 1)
			assert.Equal(t, tt.wantUnitPrice, got.Items[0].UnitPrice)
			require.NotNil(t, got.Items[0].VariantID)
			assert.Equal(t, variant, *got.Items[0].VariantID)
		})
	}
}

func TestComputeOrderTotals_UnknownVariantUsesProductStock(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Shirt", "10.00", 4)
	unknown := uuid.New()
	engine := newEngine(t, testConfig(), catalog)

	got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items:            []domain.LineItem{{ProductID: product, VariantID: &unknown, Quantity: 4}},
		ShippingOptionID: "standard",
	})
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].VariantID)
	assert.Equal(t, int64(1000), got.Items[0].UnitPrice)
}

func TestComputeOrderTotals_RoundHalfAwayFromZero(t *testing.T) {
	t.Run("unit price cents conversion", func(t *testing.T) {
		catalog := newFakeCatalog()
		up := catalog.addProduct("Up", "10.125", 1)
		variantProduct := catalog.addProduct("Variant", "1.00", 1)
		variant := catalog.addVariant("Small", "-0.005", 1)
		engine := newEngine(t, testConfig(), catalog)

		got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
			Items: []domain.LineItem{
				{ProductID: up, Quantity: 1},
				{ProductID: variantProduct, VariantID: &variant, Quantity: 1},
			},
			ShippingOptionID: "pickup",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1013), got.Items[0].UnitPrice)
		assert.Equal(t, int64(100), got.Items[1].UnitPrice)
	})

	t.Run("tax half rounds up, not to even", func(t *testing.T) {
		cfg := testConfig()
		cfg.VATRate = decimal.RequireFromString("0.5")

		catalog := newFakeCatalog()
		product := catalog.addProduct("Penny sweet", "0.01", 10)
		engine := newEngine(t, cfg, catalog)

		got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
			Items:            []domain.LineItem{{ProductID: product, Quantity: 5}},
			ShippingOptionID: "pickup",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(5), got.Subtotal)
		assert.Equal(t, int64(3), got.Tax)
		assert.Equal(t, int64(8), got.Total)
	})
}

func TestComputeOrderTotals_Discount(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Product", "10.00", 5)

	tests := []struct {
		name         string
		discounts    *fakeDiscounts
		promoCode    string
		wantDiscount int64
		wantTotal    int64
		wantErr      error
	}{
		{
			name:      "no resolver: zero discount",
			promoCode: "SAVE10",
			wantTotal: 2988,
		},
		{
			name:      "resolver without code: zero discount",
			discounts: &fakeDiscounts{discount: 500},
			wantTotal: 2988,
		},
		{
			name:         "discount subtracted after tax: ok",
			discounts:    &fakeDiscounts{discount: 500},
			promoCode:    "SAVE5",
			wantDiscount: 500,
			wantTotal:    2488,
		},
		{
			name:      "blank code: zero discount",
			discounts: &fakeDiscounts{err: errors.New("resolver called for blank code")},
			promoCode: "   ",
			wantTotal: 2988,
		},
		{
			name:      "discount exceeding total: invalid state",
			discounts: &fakeDiscounts{discount: 5000},
			promoCode: "BROKEN",
			wantErr:   domain.ErrInvalidState,
		},
		{
			name:      "unknown code: not found",
			discounts: &fakeDiscounts{err: domain.ErrNotFound},
			promoCode: "NOPE",
			wantErr:   domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []pricing.Option
			if tt.discounts != nil {
				opts = append(opts, pricing.WithDiscountResolver(tt.discounts))
			}
			engine := newEngine(t, testConfig(), catalog, opts...)

			got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
				Items:            []domain.LineItem{{ProductID: product, Quantity: 2}},
				ShippingOptionID: "standard",
				PromoCode:        tt.promoCode,
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, int64(498), got.Tax)
			assert.Equal(t, tt.wantDiscount, got.Discount)
			assert.Equal(t, tt.wantTotal, got.Total)
		})
	}
}

func TestComputeOrderTotals_CurrencyMismatch(t *testing.T) {
	catalog := newFakeCatalog()
	product := catalog.addProduct("Product", "10.00", 5)
	entry := catalog.products[product]
	entry.BasePrice.Currency = currency.EUR
	catalog.products[product] = entry

	engine := newEngine(t, testConfig(), catalog)

	_, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items:            []domain.LineItem{{ProductID: product, Quantity: 1}},
		ShippingOptionID: "standard",
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestComputeOrderTotals_TotalsInvariant(t *testing.T) {
	catalog := newFakeCatalog()

	var items []domain.LineItem
	for range gofakeit.IntRange(1, 20) {
		qty := gofakeit.IntRange(1, 5)
		id := catalog.addProduct(gofakeit.ProductName(), fmt.Sprintf("%.2f", gofakeit.Price(0.5, 200)), qty+gofakeit.IntRange(0, 3))

		item := domain.LineItem{ProductID: id, Quantity: qty}
		if gofakeit.Bool() {
			variant := catalog.addVariant(gofakeit.Color(), fmt.Sprintf("%.2f", gofakeit.Price(0, 5)), qty)
			item.VariantID = &variant
		}
		items = append(items, item)
	}

	engine := newEngine(t, testConfig(), catalog, pricing.WithLookupConcurrency(3))

	got, err := engine.ComputeOrderTotals(t.Context(), pricing.Request{
		Items:            items,
		ShippingOptionID: gofakeit.RandomString([]string{"standard", "express", "pickup"}),
	})
	require.NoError(t, err)

	var sum int64
	require.Len(t, got.Items, len(items))
	for i, it := range got.Items {
		assert.Equal(t, items[i].ProductID, it.ProductID, "items keep input order")
		assert.Equal(t, it.UnitPrice*int64(it.Quantity), it.LineSubtotal)
		sum += it.LineSubtotal
	}

	assert.Equal(t, sum, got.Subtotal)
	assert.Equal(t, got.Subtotal+got.ShippingCost+got.Tax-got.Discount, got.Total)
	assert.GreaterOrEqual(t, got.Total, int64(0))
	assert.Equal(t, len(items), catalog.calls)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*pricing.Config)
		wantError string
	}{
		{
			name:      "negative vat: error",
			mutate:    func(c *pricing.Config) { c.VATRate = decimal.RequireFromString("-0.1") },
			wantError: "cfg.Validate: vat rate[-0.1] is negative",
		},
		{
			name:      "negative threshold: error",
			mutate:    func(c *pricing.Config) { c.FreeShippingThreshold = -1 },
			wantError: "cfg.Validate: free shipping threshold[-1] is negative",
		},
		{
			name:      "missing standard rate: error",
			mutate:    func(c *pricing.Config) { delete(c.Rates.Default, "standard") },
			wantError: `cfg.Validate: shipping rates: "standard" rate is missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := pricing.NewEngine(cfg, newFakeCatalog())
			require.EqualError(t, err, tt.wantError)
		})
	}

	_, err := pricing.NewEngine(testConfig(), nil)
	require.EqualError(t, err, "catalog is nil")
}

func assertTotals(t *testing.T, expected, actual domain.ComputedOrderTotals) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	diff := cmp.Diff(expected, actual, currencyComparer)
	assert.Empty(t, diff)
}
