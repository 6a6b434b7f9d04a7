// Package live fans order status changes out to subscribed trackers over
// Redis pub/sub. The write side (payment callback, checkout) publishes; the
// read side implements the tracker's live-query contract.
package live

import (
	"context"
	"encoding/json"
	"time"

	"snacket-be/internal/logger"
	"snacket-be/internal/order"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// snapshot is the wire form of one order state on the update channel.
type snapshot struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Status    order.Status `json:"status"`
	Total     int          `json:"total"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toSnapshot(o *order.Order) snapshot {
	return snapshot{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}

func (s snapshot) toOrder() order.Order {
	return order.Order{
		ID:        s.ID,
		UserID:    s.UserID,
		Status:    s.Status,
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
	}
}

// OrderSource supplies the current state for the initial snapshot delivered
// to every new subscriber.
type OrderSource interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
}

type Broker struct {
	rdb    *redis.Client
	orders OrderSource
}

func NewBroker(rdb *redis.Client, orders OrderSource) *Broker {
	return &Broker{rdb: rdb, orders: orders}
}

// NotifyStatusChange publishes the order's new state. Implements
// order.StatusNotifier; publish failures are logged, never surfaced, so a
// Redis outage cannot fail a payment callback.
func (b *Broker) NotifyStatusChange(ctx context.Context, o *order.Order) {
	payload, err := json.Marshal(toSnapshot(o))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to marshal order snapshot", zap.Error(err))
		return
	}

	if err := b.rdb.Publish(ctx, OrderChannel(o.ID), payload).Err(); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order update",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}

// Subscribe opens a live view of one order: the current state is delivered
// first, followed by every published change. The returned cancel function
// tears the subscription down; the channel closes after it is called.
func (b *Broker) Subscribe(ctx context.Context, orderID string) (<-chan order.Order, func(), error) {
	pubsub := b.rdb.Subscribe(ctx, OrderChannel(orderID))

	// Force the SUBSCRIBE round trip so no update published after this
	// point is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan order.Order, 8)

	go func() {
		defer close(out)

		if current, err := b.orders.GetByID(ctx, orderID); err == nil {
			out <- *current
		}

		for msg := range pubsub.Channel() {
			var s snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
				logger.L().Warn("dropping malformed order update", zap.Error(err))
				continue
			}
			out <- s.toOrder()
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}
