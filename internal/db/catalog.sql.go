// source: catalog.sql

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const getProduct = `-- name: GetProduct :one
SELECT id, name, price_amount, price_currency, stock
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Stock,
	)
	return i, err
}

const getVariant = `-- name: GetVariant :one
SELECT id, product_id, name, price_modifier, stock
FROM product_variants
WHERE id = $1 AND product_id = $2
`

type GetVariantParams struct {
	ID        uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) GetVariant(ctx context.Context, arg GetVariantParams) (ProductVariant, error) {
	row := q.db.QueryRow(ctx, getVariant, arg.ID, arg.ProductID)
	var i ProductVariant
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.Name,
		&i.PriceModifier,
		&i.Stock,
	)
	return i, err
}

const insertProduct = `-- name: InsertProduct :exec
INSERT INTO products (id, name, price_amount, price_currency, stock)
VALUES ($1, $2, $3, $4, $5)
`

type InsertProductParams struct {
	ID            uuid.UUID
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) error {
	_, err := q.db.Exec(ctx, insertProduct,
		arg.ID,
		arg.Name,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Stock,
	)
	return err
}

const insertVariant = `-- name: InsertVariant :exec
INSERT INTO product_variants (id, product_id, name, price_modifier, stock)
VALUES ($1, $2, $3, $4, $5)
`

type InsertVariantParams struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Name          string
	PriceModifier decimal.Decimal
	Stock         int32
}

func (q *Queries) InsertVariant(ctx context.Context, arg InsertVariantParams) error {
	_, err := q.db.Exec(ctx, insertVariant,
		arg.ID,
		arg.ProductID,
		arg.Name,
		arg.PriceModifier,
		arg.Stock,
	)
	return err
}

const decrementProductStock = `-- name: DecrementProductStock :execrows
UPDATE products
SET stock = stock - $1
WHERE id = $2 AND stock >= $1
`

type DecrementProductStockParams struct {
	Quantity int32
	ID       uuid.UUID
}

func (q *Queries) DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error) {
	result, err := q.db.Exec(ctx, decrementProductStock, arg.Quantity, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const decrementVariantStock = `-- name: DecrementVariantStock :execrows
UPDATE product_variants
SET stock = stock - $1
WHERE id = $2 AND product_id = $3 AND stock >= $1
`

type DecrementVariantStockParams struct {
	Quantity  int32
	ID        uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) DecrementVariantStock(ctx context.Context, arg DecrementVariantStockParams) (int64, error) {
	result, err := q.db.Exec(ctx, decrementVariantStock, arg.Quantity, arg.ID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
