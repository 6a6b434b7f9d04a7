package order

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrOrderNotFound   = errors.New("order not found")
	ErrForbidden       = errors.New("cannot access others' orders")
)
