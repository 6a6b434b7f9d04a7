package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"snacket-be/internal/coupon"
	"snacket-be/internal/logger"
	"snacket-be/internal/menu"
	"snacket-be/internal/payment"
	"snacket-be/internal/user"
	"snacket-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ten reward points are worth one rupee of discount.
const pointsPerRupee = 10

type CheckoutItem struct {
	ID       string   `json:"id" validate:"required"`
	Quantity int      `json:"quantity" validate:"required,min=1"`
	Size     string   `json:"size"`
	Addons   []string `json:"addons"`
}

type CheckoutInput struct {
	RestaurantID  string         `json:"restaurantId" validate:"required"`
	ArrivalTime   string         `json:"arrivalTime" validate:"required"`
	CouponCode    string         `json:"couponCode"`
	UsePoints     bool           `json:"usePoints"`
	PaymentMethod Method         `json:"paymentMethod" validate:"required,oneof=online cod"`
	UserName      string         `json:"userName"`
	UserPhone     string         `json:"userPhone"`
	Items         []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

type CheckoutResult struct {
	OrderID     string
	RedirectURL string
	Status      Status
	Total       int
}

// StatusNotifier fans a status change out to live subscribers (the client
// order tracker). Implementations must not block the caller for long.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, o *Order)
}

type Service interface {
	// Checkout validates the cart, prices it server-side, creates the order
	// and, for a non-zero online total, initiates the gateway transaction.
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	// ApplyPaymentResult reconciles one gateway callback with its order.
	// Safe to call more than once with the same payload.
	ApplyPaymentResult(ctx context.Context, merchantTxnID string, success bool, details json.RawMessage) error
	GetOrder(ctx context.Context, userID, orderID string) (*Order, error)
	ListOrders(ctx context.Context, userID string) ([]*Order, error)
}

type service struct {
	orders   Repository
	menus    menu.Repository
	coupons  coupon.Repository
	users    user.Repository
	gateway  payment.Gateway
	notifier StatusNotifier
	now      func() time.Time
}

func NewService(
	orders Repository,
	menus menu.Repository,
	coupons coupon.Repository,
	users user.Repository,
	gateway payment.Gateway,
	notifier StatusNotifier,
) Service {
	return &service{
		orders:   orders,
		menus:    menus,
		coupons:  coupons,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("user_id", userID),
		zap.String("restaurant_id", input.RestaurantID),
		zap.Int("item_count", len(input.Items)),
	)

	// 1. Re-price every line against the restaurant's current menu. Client
	// prices are never trusted.
	m, err := s.menus.MenuFor(ctx, input.RestaurantID)
	if err != nil {
		log.Error("failed to load menu", zap.Error(err))
		return nil, err
	}

	items := make([]Item, 0, len(input.Items))
	subtotal := 0
	for _, line := range input.Items {
		unitPrice, name, err := m.UnitPrice(line.ID, line.Size, line.Addons)
		if err != nil {
			log.Warn("cart line rejected",
				zap.String("item_id", line.ID),
				zap.String("size", line.Size),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %s", err, line.ID)
		}

		subtotal += unitPrice * line.Quantity
		items = append(items, Item{
			ItemID:    line.ID,
			Name:      name,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Addons:    line.Addons,
			UnitPrice: unitPrice,
		})
	}

	// 2. Coupon validation and discount.
	discount := 0
	var couponCode *string
	if input.CouponCode != "" {
		c, err := s.coupons.GetByCode(ctx, input.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := c.Validate(subtotal, s.now()); err != nil {
			return nil, err
		}
		if c.UsageLimit == coupon.LimitOnce {
			n, err := s.orders.CountByUserAndCoupon(ctx, userID, c.Code)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, coupon.ErrAlreadyUsed
			}
		}
		discount = c.DiscountFor(subtotal)
		couponCode = &c.Code
	}

	// 3. Points redemption, capped so the total never goes negative.
	pointsValue, pointsRedeemed := 0, 0
	if input.UsePoints {
		balance, err := s.users.PointsBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		pointsValue = balance / pointsPerRupee
		if remaining := subtotal - discount; pointsValue > remaining {
			pointsValue = remaining
		}
		if pointsValue < 0 {
			pointsValue = 0
		}
		pointsRedeemed = pointsValue * pointsPerRupee
	}

	total := subtotal - discount - pointsValue
	if total < 0 {
		total = 0
	}

	o := &Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		RestaurantID:   input.RestaurantID,
		Items:          items,
		Subtotal:       subtotal,
		Discount:       discount,
		PointsRedeemed: pointsRedeemed,
		PointsValue:    pointsValue,
		Total:          total,
		CouponCode:     couponCode,
		PaymentMethod:  input.PaymentMethod,
		ArrivalTime:    input.ArrivalTime,
		CustomerName:   input.UserName,
		CustomerPhone:  input.UserPhone,
		CreatedAt:      s.now(),
	}

	log = log.With(
		zap.String("order_id", o.ID),
		zap.Int("subtotal", subtotal),
		zap.Int("discount", discount),
		zap.Int("points_value", pointsValue),
		zap.Int("total", total),
	)

	// 4. Fully-covered or cash orders skip the gateway entirely.
	if total == 0 || input.PaymentMethod == MethodCOD {
		o.Status = StatusPending
		if err := s.orders.Create(ctx, o); err != nil {
			log.Error("failed to create order", zap.Error(err))
			return nil, err
		}

		log.Info("order created without gateway", zap.String("status", string(o.Status)))
		s.notify(ctx, o)
		return &CheckoutResult{OrderID: o.ID, Status: o.Status, Total: total}, nil
	}

	// 5. Online payment: write the order first, then call the gateway. A
	// failed initiation leaves the row awaiting_payment for reconciliation.
	mtid := MerchantTxnPrefix + o.ID
	o.Status = StatusAwaitingPayment
	o.MerchantTransactionID = &mtid

	if err := s.orders.Create(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	resp, err := s.gateway.Initiate(ctx, payment.InitiateRequest{
		OrderID:               o.ID,
		MerchantTransactionID: mtid,
		UserID:                userID,
		MobileNumber:          input.UserPhone,
		AmountPaise:           o.TotalPaise(),
	})
	if err != nil {
		log.Error("payment initiation failed, order left awaiting reconciliation",
			zap.String("merchant_transaction_id", mtid),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.orders.SetPaymentURL(ctx, o.ID, resp.RedirectURL); err != nil {
		// Non-fatal: the redirect is still returned to the caller.
		log.Warn("failed to persist payment url", zap.Error(err))
	}

	log.Info("order awaiting payment", zap.String("merchant_transaction_id", mtid))

	return &CheckoutResult{
		OrderID:     o.ID,
		RedirectURL: resp.RedirectURL,
		Status:      o.Status,
		Total:       total,
	}, nil
}

func (s *service) ApplyPaymentResult(ctx context.Context, merchantTxnID string, success bool, details json.RawMessage) error {
	log := logger.FromCtx(ctx).With(zap.String("merchant_transaction_id", merchantTxnID))

	o, err := s.orders.GetByMerchantTransactionID(ctx, merchantTxnID)
	if err != nil {
		return err
	}

	target := StatusPending
	if !success {
		target = StatusPaymentFailed
	}

	if o.Status == target {
		log.Info("duplicate payment callback ignored", zap.String("status", string(o.Status)))
		return nil
	}
	if o.Status != StatusAwaitingPayment {
		// The order already moved on (vendor action or an earlier callback);
		// a late redelivery must not rewind it.
		log.Warn("late payment callback ignored",
			zap.String("status", string(o.Status)),
			zap.String("target", string(target)),
		)
		return nil
	}

	applied, err := s.orders.TransitionFromAwaiting(ctx, o.ID, target, details)
	if err != nil {
		log.Error("failed to apply payment result", zap.Error(err))
		return err
	}
	if !applied {
		// Lost the race against a concurrent delivery; state already settled.
		log.Info("payment result already applied")
		return nil
	}

	log.Info("payment result applied",
		zap.String("order_id", o.ID),
		zap.String("status", string(target)),
	)

	o.Status = target
	o.PaymentDetails = details
	s.notify(ctx, o)
	return nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, userID string) ([]*Order, error) {
	return s.orders.ListByUser(ctx, userID, 50)
}

func (s *service) notify(ctx context.Context, o *Order) {
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, o)
	}
}
