package coupon

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountFor(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		c := &Coupon{Code: "SAVE50", Type: TypeFixed, Value: 50}
		assert.Equal(t, 50, c.DiscountFor(500))
	})

	t.Run("percentage floors", func(t *testing.T) {
		c := &Coupon{Code: "TEN", Type: TypePercentage, Value: 10}
		assert.Equal(t, 25, c.DiscountFor(255))
	})

	t.Run("capped at subtotal", func(t *testing.T) {
		c := &Coupon{Code: "BIG", Type: TypeFixed, Value: 500}
		assert.Equal(t, 100, c.DiscountFor(100))
	})

	t.Run("zero subtotal", func(t *testing.T) {
		c := &Coupon{Code: "SAVE50", Type: TypeFixed, Value: 50}
		assert.Equal(t, 0, c.DiscountFor(0))
	})
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Coupon{
		Code:          "SAVE50",
		Type:          TypeFixed,
		Value:         50,
		MinOrderValue: 100,
		IsActive:      true,
		ExpiryDate:    now.Add(24 * time.Hour),
		UsageLimit:    LimitOnce,
	}

	t.Run("valid", func(t *testing.T) {
		c := base
		assert.NoError(t, c.Validate(500, now))
	})

	t.Run("inactive", func(t *testing.T) {
		c := base
		c.IsActive = false
		assert.ErrorIs(t, c.Validate(500, now), ErrInactive)
	})

	t.Run("expired", func(t *testing.T) {
		c := base
		c.ExpiryDate = now.Add(-time.Hour)
		assert.ErrorIs(t, c.Validate(500, now), ErrExpired)
	})

	t.Run("below minimum", func(t *testing.T) {
		c := base
		assert.ErrorIs(t, c.Validate(99, now), ErrMinOrderNotMet)
	})
}

func TestRepository_GetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"code", "type", "value", "min_order_value", "is_active", "expiry_date", "usage_limit"}).
			AddRow("SAVE50", "fixed", 50, 100, true, time.Now().Add(time.Hour), "once")

		mock.ExpectQuery(`SELECT code, type, value, .* FROM coupons WHERE code = \$1`).
			WithArgs("SAVE50").
			WillReturnRows(rows)

		c, err := repo.GetByCode(context.Background(), "SAVE50")
		require.NoError(t, err)
		assert.Equal(t, TypeFixed, c.Type)
		assert.Equal(t, LimitOnce, c.UsageLimit)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT code, type, value, .* FROM coupons WHERE code = \$1`).
			WithArgs("NOPE").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByCode(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
