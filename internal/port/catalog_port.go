package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/domain"
)

// CatalogLookup reads price and stock for a product and optional variant.
// A missing product is reported with an error wrapping domain.ErrNotFound.
// A missing variant is not an error: the entry is returned without Variant.
type CatalogLookup interface {
	Lookup(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (domain.CatalogEntry, error)
}

type DiscountResolver interface {
	ResolveDiscount(ctx context.Context, code string, subtotal int64) (int64, error)
}
