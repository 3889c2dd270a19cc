package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-core/internal/domain"
)

// OrderRepository persists orders. CreateOrder decrements stock atomically
// and fails with domain.ErrStockConflict if any item can no longer be served.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
}
