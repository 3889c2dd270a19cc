package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-core/internal/db"
	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/nikolayk812/checkout-core/internal/port"
	"golang.org/x/text/currency"
)

type catalogRepository struct {
	q *db.Queries
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogLookup {
	return &catalogRepository{q: db.New(pool)}
}

func (r *catalogRepository) Lookup(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (domain.CatalogEntry, error) {
	product, err := r.q.GetProduct(ctx, productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CatalogEntry{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	entry, err := mapProductToDomain(product)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	if variantID == nil {
		return entry, nil
	}

	variant, err := r.q.GetVariant(ctx, db.GetVariantParams{ID: *variantID, ProductID: productID})
	if errors.Is(err, pgx.ErrNoRows) {
		// unknown variant: priced and stock-gated at product level
		return entry, nil
	}
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("q.GetVariant: %w", err)
	}

	entry.Variant = &domain.CatalogVariant{
		ID:            variant.ID,
		Name:          variant.Name,
		PriceModifier: variant.PriceModifier,
		Stock:         int(variant.Stock),
	}

	return entry, nil
}

func mapProductToDomain(row db.Product) (domain.CatalogEntry, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CatalogEntry{
		ProductID: row.ID,
		Name:      row.Name,
		BasePrice: domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Stock:     int(row.Stock),
	}, nil
}

// AddProduct stores a product and its variants, used by seeding and tests.
func AddProduct(ctx context.Context, pool *pgxpool.Pool, entry domain.CatalogEntry, variants ...domain.CatalogVariant) error {
	_, err := withTx(ctx, pool, db.New(pool), func(q *db.Queries) (struct{}, error) {
		err := q.InsertProduct(ctx, db.InsertProductParams{
			ID:            entry.ProductID,
			Name:          entry.Name,
			PriceAmount:   entry.BasePrice.Amount,
			PriceCurrency: entry.BasePrice.Currency.String(),
			Stock:         int32(entry.Stock),
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.InsertProduct: %w", err)
		}

		for _, v := range variants {
			err := q.InsertVariant(ctx, db.InsertVariantParams{
				ID:            v.ID,
				ProductID:     entry.ProductID,
				Name:          v.Name,
				PriceModifier: v.PriceModifier,
				Stock:         int32(v.Stock),
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.InsertVariant: %w", err)
			}
		}

		return struct{}{}, nil
	})

	return err
}
