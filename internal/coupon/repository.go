package coupon

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	const q = `
		SELECT code, type, value, min_order_value, is_active, expiry_date, usage_limit
		FROM coupons
		WHERE code = $1
	`

	var (
		c      Coupon
		expiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&c.Code, &c.Type, &c.Value, &c.MinOrderValue, &c.IsActive, &expiry, &c.UsageLimit,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// A NULL expiry means the coupon never expires; Validate treats the zero
	// time the same way.
	if expiry.Valid {
		c.ExpiryDate = expiry.Time
	}

	return &c, nil
}
