package coupon

import "time"

type Type string

const (
	TypeFixed      Type = "fixed"
	TypePercentage Type = "percentage"
)

type UsageLimit string

const (
	LimitOnce      UsageLimit = "once"
	LimitUnlimited UsageLimit = "unlimited"
)

// Coupon is read-only to the order flow; it is validated against the subtotal
// and usage history, never mutated.
type Coupon struct {
	Code          string
	Type          Type
	Value         int
	MinOrderValue int
	IsActive      bool
	ExpiryDate    time.Time
	UsageLimit    UsageLimit
}

// DiscountFor computes the rupee discount for a subtotal, capped so the
// discount never exceeds the subtotal.
func (c *Coupon) DiscountFor(subtotal int) int {
	var d int
	switch c.Type {
	case TypePercentage:
		d = subtotal * c.Value / 100
	default:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Validate checks the coupon's intrinsic preconditions against the order
// subtotal. The single-use history check lives with the order service, which
// owns the order history.
func (c *Coupon) Validate(subtotal int, now time.Time) error {
	if !c.IsActive {
		return ErrInactive
	}
	if !c.ExpiryDate.IsZero() && now.After(c.ExpiryDate) {
		return ErrExpired
	}
	if subtotal < c.MinOrderValue {
		return ErrMinOrderNotMet
	}
	return nil
}
