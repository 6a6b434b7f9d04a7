package coupon

import "errors"

var (
	ErrNotFound       = errors.New("coupon not found")
	ErrInactive       = errors.New("coupon is not active")
	ErrExpired        = errors.New("coupon has expired")
	ErrMinOrderNotMet = errors.New("order subtotal below coupon minimum")
	ErrAlreadyUsed    = errors.New("coupon already used")
)
