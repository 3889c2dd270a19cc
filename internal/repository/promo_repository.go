package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-core/internal/db"
	"github.com/nikolayk812/checkout-core/internal/domain"
	"github.com/nikolayk812/checkout-core/internal/port"
)

type promoRepository struct {
	q   *db.Queries
	now func() time.Time
}

func NewPromoCodes(pool *pgxpool.Pool) port.DiscountResolver {
	return &promoRepository{
		q:   db.New(pool),
		now: time.Now,
	}
}

// ResolveDiscount fails with domain.ErrNotFound for unknown, inactive or expired codes.
func (r *promoRepository) ResolveDiscount(ctx context.Context, code string, subtotal int64) (int64, error) {
	code = normalizeCode(code)
	if code == "" {
		return 0, fmt.Errorf("%w: promo code is empty", domain.ErrInvalidRequest)
	}

	row, err := r.q.GetPromoCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("promo code[%s]: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("q.GetPromoCode: %w", err)
	}

	promo := mapPromoCodeToDomain(row)

	now := r.now()
	if !promo.ValidAt(now) {
		return 0, fmt.Errorf("promo code[%s] is not active: %w", code, domain.ErrNotFound)
	}

	return promo.DiscountFor(subtotal, now), nil
}

// AddPromoCode stores a new code, used by seeding and tests.
func AddPromoCode(ctx context.Context, pool *pgxpool.Pool, promo domain.PromoCode) error {
	err := db.New(pool).InsertPromoCode(ctx, db.InsertPromoCodeParams{
		Code:        normalizeCode(promo.Code),
		Kind:        string(promo.Kind),
		Value:       promo.Value,
		MinSubtotal: promo.MinSubtotal,
		Active:      promo.Active,
		ExpiresAt:   promo.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("q.InsertPromoCode: %w", err)
	}

	return nil
}

func mapPromoCodeToDomain(row db.PromoCode) domain.PromoCode {
	return domain.PromoCode{
		Code:        row.Code,
		Kind:        domain.PromoKind(row.Kind),
		Value:       row.Value,
		MinSubtotal: row.MinSubtotal,
		Active:      row.Active,
		ExpiresAt:   row.ExpiresAt,
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
