// source: orders.sql

package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const insertOrder = `-- name: InsertOrder :exec
INSERT INTO orders (id, customer_id, status, currency, shipping_option_id, promo_code,
                    subtotal, shipping_cost, tax, discount, total,
                    estimated_delivery_from, estimated_delivery_to)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

type InsertOrderParams struct {
	ID                    uuid.UUID
	CustomerID            string
	Status                string
	Currency              string
	ShippingOptionID      string
	PromoCode             string
	Subtotal              int64
	ShippingCost          int64
	Tax                   int64
	Discount              int64
	Total                 int64
	EstimatedDeliveryFrom *time.Time
	EstimatedDeliveryTo   *time.Time
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) error {
	_, err := q.db.Exec(ctx, insertOrder,
		arg.ID,
		arg.CustomerID,
		arg.Status,
		arg.Currency,
		arg.ShippingOptionID,
		arg.PromoCode,
		arg.Subtotal,
		arg.ShippingCost,
		arg.Tax,
		arg.Discount,
		arg.Total,
		arg.EstimatedDeliveryFrom,
		arg.EstimatedDeliveryTo,
	)
	return err
}

const insertOrderItem = `-- name: InsertOrderItem :exec
INSERT INTO order_items (order_id, line_no, product_id, variant_id, name, quantity, unit_price, line_subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type InsertOrderItemParams struct {
	OrderID      uuid.UUID
	LineNo       int32
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	Name         string
	Quantity     int32
	UnitPrice    int64
	LineSubtotal int64
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) error {
	_, err := q.db.Exec(ctx, insertOrderItem,
		arg.OrderID,
		arg.LineNo,
		arg.ProductID,
		arg.VariantID,
		arg.Name,
		arg.Quantity,
		arg.UnitPrice,
		arg.LineSubtotal,
	)
	return err
}

const getOrder = `-- name: GetOrder :one
SELECT id, customer_id, status, currency, shipping_option_id, promo_code,
       subtotal, shipping_cost, tax, discount, total,
       estimated_delivery_from, estimated_delivery_to, created_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.Status,
		&i.Currency,
		&i.ShippingOptionID,
		&i.PromoCode,
		&i.Subtotal,
		&i.ShippingCost,
		&i.Tax,
		&i.Discount,
		&i.Total,
		&i.EstimatedDeliveryFrom,
		&i.EstimatedDeliveryTo,
		&i.CreatedAt,
	)
	return i, err
}

const getOrderItems = `-- name: GetOrderItems :many
SELECT product_id, variant_id, name, quantity, unit_price, line_subtotal
FROM order_items
WHERE order_id = $1
ORDER BY line_no
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ProductID,
			&i.VariantID,
			&i.Name,
			&i.Quantity,
			&i.UnitPrice,
			&i.LineSubtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
