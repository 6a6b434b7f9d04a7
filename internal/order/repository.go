package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByMerchantTransactionID(ctx context.Context, mtid string) (*Order, error)
	// LatestByUser returns the user's most recent order created after the
	// given instant, or ErrOrderNotFound.
	LatestByUser(ctx context.Context, userID string, createdAfter time.Time) (*Order, error)
	// CountByUserAndCoupon counts the user's orders carrying the coupon code
	// in any non-failed, non-declined status.
	CountByUserAndCoupon(ctx context.Context, userID, code string) (int, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error)
	SetPaymentURL(ctx context.Context, id, url string) error
	// TransitionFromAwaiting applies the payment outcome only while the order
	// still awaits payment; it reports whether a row changed, making the
	// callback update idempotent under redelivery.
	TransitionFromAwaiting(ctx context.Context, id string, to Status, details json.RawMessage) (bool, error)
}

const orderColumns = `
	id, user_id, restaurant_id, items,
	subtotal, discount, points_redeemed, points_value, total,
	coupon_code, payment_method, merchant_transaction_id, payment_url,
	status, payment_details, arrival_time, customer_name, customer_phone,
	created_at, has_review`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO orders (
			id, user_id, restaurant_id, items,
			subtotal, discount, points_redeemed, points_value, total,
			coupon_code, payment_method, merchant_transaction_id,
			status, arrival_time, customer_name, customer_phone, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`

	_, err = r.db.ExecContext(ctx, q,
		o.ID, o.UserID, o.RestaurantID, items,
		o.Subtotal, o.Discount, o.PointsRedeemed, o.PointsValue, o.Total,
		o.CouponCode, o.PaymentMethod, o.MerchantTransactionID,
		o.Status, o.ArrivalTime, o.CustomerName, o.CustomerPhone, o.CreatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *repository) GetByMerchantTransactionID(ctx context.Context, mtid string) (*Order, error) {
	return r.getWhere(ctx, "merchant_transaction_id = $1", mtid)
}

func (r *repository) getWhere(ctx context.Context, where string, args ...any) (*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) LatestByUser(ctx context.Context, userID string, createdAfter time.Time) (*Order, error) {
	return r.getWhere(ctx,
		"user_id = $1 AND created_at > $2 ORDER BY created_at DESC LIMIT 1",
		userID, createdAfter,
	)
}

func (r *repository) CountByUserAndCoupon(ctx context.Context, userID, code string) (int, error) {
	const q = `
		SELECT count(*)
		FROM orders
		WHERE user_id = $1
		  AND coupon_code = $2
		  AND status NOT IN ('payment_failed', 'declined')
	`

	var n int
	if err := r.db.QueryRowContext(ctx, q, userID, code).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) SetPaymentURL(ctx context.Context, id, url string) error {
	const q = `UPDATE orders SET payment_url = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, q, id, url)
	return err
}

func (r *repository) TransitionFromAwaiting(ctx context.Context, id string, to Status, details json.RawMessage) (bool, error) {
	const q = `
		UPDATE orders
		SET status = $2, payment_details = $3, updated_at = now()
		WHERE id = $1 AND status = 'awaiting_payment'
	`

	res, err := r.db.ExecContext(ctx, q, id, to, []byte(details))
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o          Order
		items      []byte
		details    []byte
		couponCode sql.NullString
		mtid       sql.NullString
		payURL     sql.NullString
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.RestaurantID, &items,
		&o.Subtotal, &o.Discount, &o.PointsRedeemed, &o.PointsValue, &o.Total,
		&couponCode, &o.PaymentMethod, &mtid, &payURL,
		&o.Status, &details, &o.ArrivalTime, &o.CustomerName, &o.CustomerPhone,
		&o.CreatedAt, &o.HasReview,
	)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
	}
	if len(details) > 0 {
		o.PaymentDetails = json.RawMessage(details)
	}
	if couponCode.Valid {
		o.CouponCode = &couponCode.String
	}
	if mtid.Valid {
		o.MerchantTransactionID = &mtid.String
	}
	if payURL.Valid {
		o.PaymentURL = &payURL.String
	}

	return &o, nil
}
