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

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrders(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrdersWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

// CreateOrder inserts the order with its items and decrements stock for every
// line in the same transaction. A decrement matching no row means another
// checkout took the stock after pricing; the whole order is rolled back.
func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	if order.ID == uuid.Nil {
		return fmt.Errorf("order id is empty")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order items are empty")
	}

	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		if err := q.InsertOrder(ctx, mapOrderToInsertParams(order)); err != nil {
			return struct{}{}, fmt.Errorf("q.InsertOrder: %w", err)
		}

		for i, item := range order.Items {
			err := q.InsertOrderItem(ctx, db.InsertOrderItemParams{
				OrderID:      order.ID,
				LineNo:       int32(i + 1),
				ProductID:    item.ProductID,
				VariantID:    item.VariantID,
				Name:         item.Name,
				Quantity:     int32(item.Quantity),
				UnitPrice:    item.UnitPrice,
				LineSubtotal: item.LineSubtotal,
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.InsertOrderItem: %w", err)
			}

			if err := decrementStock(ctx, q, item); err != nil {
				return struct{}{}, fmt.Errorf("decrementStock: %w", err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	row, err := r.q.GetOrder(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	itemRows, err := r.q.GetOrderItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	order, err := mapOrderRowToDomain(row, itemRows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderRowToDomain: %w", err)
	}

	return order, nil
}

func decrementStock(ctx context.Context, q *db.Queries, item domain.OrderItem) error {
	var (
		rowsAffected int64
		err          error
	)

	if item.VariantID != nil {
		rowsAffected, err = q.DecrementVariantStock(ctx, db.DecrementVariantStockParams{
			Quantity:  int32(item.Quantity),
			ID:        *item.VariantID,
			ProductID: item.ProductID,
		})
		if err != nil {
			return fmt.Errorf("q.DecrementVariantStock: %w", err)
		}
	} else {
		rowsAffected, err = q.DecrementProductStock(ctx, db.DecrementProductStockParams{
			Quantity: int32(item.Quantity),
			ID:       item.ProductID,
		})
		if err != nil {
			return fmt.Errorf("q.DecrementProductStock: %w", err)
		}
	}

	if rowsAffected == 0 {
		return &domain.StockConflictError{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}

	return nil
}

func mapOrderToInsertParams(order domain.Order) db.InsertOrderParams {
	return db.InsertOrderParams{
		ID:                    order.ID,
		CustomerID:            order.CustomerID,
		Status:                string(order.Status),
		Currency:              order.Currency.String(),
		ShippingOptionID:      order.ShippingOptionID,
		PromoCode:             order.PromoCode,
		Subtotal:              order.Subtotal,
		ShippingCost:          order.ShippingCost,
		Tax:                   order.Tax,
		Discount:              order.Discount,
		Total:                 order.Total,
		EstimatedDeliveryFrom: order.EstimatedDeliveryFrom,
		EstimatedDeliveryTo:   order.EstimatedDeliveryTo,
	}
}

func mapOrderRowToDomain(row db.Order, itemRows []db.OrderItem) (domain.Order, error) {
	parsedCurrency, err := currency.ParseISO(row.Currency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", row.Currency, err)
	}

	items := make([]domain.OrderItem, 0, len(itemRows))
	for _, it := range itemRows {
		items = append(items, domain.OrderItem{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			Quantity:     int(it.Quantity),
			UnitPrice:    it.UnitPrice,
			LineSubtotal: it.LineSubtotal,
		})
	}

	return domain.Order{
		ID:                    row.ID,
		CustomerID:            row.CustomerID,
		Status:                domain.OrderStatus(row.Status),
		Currency:              parsedCurrency,
		ShippingOptionID:      row.ShippingOptionID,
		PromoCode:             row.PromoCode,
		Subtotal:              row.Subtotal,
		ShippingCost:          row.ShippingCost,
		Tax:                   row.Tax,
		Discount:              row.Discount,
		Total:                 row.Total,
		Items:                 items,
		EstimatedDeliveryFrom: row.EstimatedDeliveryFrom,
		EstimatedDeliveryTo:   row.EstimatedDeliveryTo,
		CreatedAt:             row.CreatedAt,
	}, nil
}
