// source: promo_codes.sql

package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const getPromoCode = `-- name: GetPromoCode :one
SELECT code, kind, value, min_subtotal, active, expires_at
FROM promo_codes
WHERE code = $1
`

func (q *Queries) GetPromoCode(ctx context.Context, code string) (PromoCode, error) {
	row := q.db.QueryRow(ctx, getPromoCode, code)
	var i PromoCode
	err := row.Scan(
		&i.Code,
		&i.Kind,
		&i.Value,
		&i.MinSubtotal,
		&i.Active,
		&i.ExpiresAt,
	)
	return i, err
}

const insertPromoCode = `-- name: InsertPromoCode :exec
INSERT INTO promo_codes (code, kind, value, min_subtotal, active, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertPromoCodeParams struct {
	Code        string
	Kind        string
	Value       decimal.Decimal
	MinSubtotal int64
	Active      bool
	ExpiresAt   *time.Time
}

func (q *Queries) InsertPromoCode(ctx context.Context, arg InsertPromoCodeParams) error {
	_, err := q.db.Exec(ctx, insertPromoCode,
		arg.Code,
		arg.Kind,
		arg.Value,
		arg.MinSubtotal,
		arg.Active,
		arg.ExpiresAt,
	)
	return err
}
