// Package tracker drives the client-facing live order view: it resolves
// which order to watch, maps persisted statuses onto a closed set of view
// states, and fires the one-time success side effects (cart clear, delayed
// navigation) exactly once per tracking session.
package tracker

import (
	"context"
	"sync"
	"time"

	"snacket-be/internal/logger"
	"snacket-be/internal/order"

	"go.uber.org/zap"
)

type ViewState string

const (
	StateAwaitingPayment ViewState = "awaiting_payment"
	StatePaymentFailed   ViewState = "payment_failed"
	StateMissingID       ViewState = "missing_id"
	StateSuccess         ViewState = "success"
)

// StateFor maps an order status onto the tracker's view states. Every status
// on the settled-payment chain collapses into success.
func StateFor(s order.Status) ViewState {
	switch {
	case s.Paid():
		return StateSuccess
	case s == order.StatusPaymentFailed:
		return StatePaymentFailed
	case s == order.StatusDeclined:
		return StatePaymentFailed
	default:
		return StateAwaitingPayment
	}
}

// LiveQuery is a live view over a single order: current state first, then
// every change, until the cancel function is called.
type LiveQuery interface {
	Subscribe(ctx context.Context, orderID string) (<-chan order.Order, func(), error)
}

// Hooks are the side effects a tracking session may fire. All fields are
// required.
type Hooks struct {
	// OnState is invoked for every observed state change.
	OnState func(state ViewState, o *order.Order)
	// ClearCart runs once, on the first observed success state.
	ClearCart func(ctx context.Context)
	// Navigate runs once, RedirectDelay after the first success state.
	Navigate func()
	// RedirectDelay is the pause between success and navigation.
	RedirectDelay time.Duration
}

// Session tracks one order for one client view. Create a fresh Session per
// tracking attempt; the success latch does not reset.
type Session struct {
	live  LiveQuery
	hooks Hooks

	once sync.Once // success latch

	mu      sync.Mutex
	cancel  func()
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

func NewSession(live LiveQuery, hooks Hooks) *Session {
	return &Session{live: live, hooks: hooks, done: make(chan struct{})}
}

// Track subscribes to the order and consumes updates until Stop is called or
// the subscription's channel closes. It does not block.
func (s *Session) Track(ctx context.Context, orderID string) error {
	ch, cancel, err := s.live.Subscribe(ctx, orderID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.consume(ctx, orderID, ch)
	return nil
}

func (s *Session) consume(ctx context.Context, orderID string, ch <-chan order.Order) {
	defer close(s.done)

	for o := range ch {
		state := StateFor(o.Status)
		s.hooks.OnState(state, &o)

		if state == StateSuccess {
			s.once.Do(func() {
				logger.FromCtx(ctx).Info("order settled, scheduling redirect",
					zap.String("order_id", orderID),
					zap.Duration("delay", s.hooks.RedirectDelay),
				)
				s.hooks.ClearCart(ctx)

				s.mu.Lock()
				if !s.stopped {
					s.timer = time.AfterFunc(s.hooks.RedirectDelay, s.navigate)
				}
				s.mu.Unlock()
			})
		}
	}
}

// navigate runs the redirect hook under the session lock so Stop either
// blocks until a firing redirect completes or suppresses it entirely.
func (s *Session) navigate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.hooks.Navigate()
}

// Stop tears the session down: the subscription is cancelled, the update
// loop drains, and any pending navigation timer is stopped. No hook fires
// after Stop returns.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-s.done
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}
