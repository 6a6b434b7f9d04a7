package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"snacket-be/internal/order"
)

// ErrNoTrackableOrder means no tracking target could be determined; the view
// surfaces this as the missing_id state.
var ErrNoTrackableOrder = errors.New("no trackable order")

// RecentWindow bounds the most-recent-order fallback so a stale, unrelated
// order is never resumed.
const RecentWindow = 15 * time.Minute

// Hint carries whatever identifiers the navigation context provides.
type Hint struct {
	// OrderID is an explicit internal order id.
	OrderID string
	// TransactionRef is a gateway-side reference ("SNCT_<id>").
	TransactionRef string
}

// RecentOrders is the slice of the order store the resolver needs.
type RecentOrders interface {
	LatestByUser(ctx context.Context, userID string, createdAfter time.Time) (*order.Order, error)
}

type Resolver struct {
	orders RecentOrders
	now    func() time.Time
}

func NewResolver(orders RecentOrders) *Resolver {
	return &Resolver{orders: orders, now: time.Now}
}

// Resolve picks the order to track: the explicit id wins, then a transaction
// reference with the merchant prefix stripped, then the user's most recent
// order if it was created within RecentWindow.
func (r *Resolver) Resolve(ctx context.Context, userID string, hint Hint) (string, error) {
	if hint.OrderID != "" {
		return hint.OrderID, nil
	}

	if ref := hint.TransactionRef; strings.HasPrefix(ref, order.MerchantTxnPrefix) {
		if id := strings.TrimPrefix(ref, order.MerchantTxnPrefix); id != "" {
			return id, nil
		}
	}

	if userID != "" {
		o, err := r.orders.LatestByUser(ctx, userID, r.now().Add(-RecentWindow))
		if err == nil {
			return o.ID, nil
		}
		if !errors.Is(err, order.ErrOrderNotFound) {
			return "", err
		}
	}

	return "", ErrNoTrackableOrder
}
