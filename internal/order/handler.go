package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"snacket-be/internal/coupon"
	"snacket-be/internal/logger"
	"snacket-be/internal/menu"
	"snacket-be/internal/payment"
	"snacket-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handler struct {
	svc      Service
	validate *validator.Validate
}

func NewHandler(svc Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

type checkoutResponse struct {
	OrderID     string `json:"orderId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
}

// Checkout handles POST /api/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, utils.CodeInvalidArgument, "malformed request body")
		return
	}

	if err := h.validate.Struct(input); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, utils.CodeInvalidArgument, err.Error())
		return
	}

	result, err := h.svc.Checkout(r.Context(), input)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	resp := checkoutResponse{Status: string(result.Status), Total: result.Total}
	if result.RedirectURL != "" {
		resp.RedirectURL = result.RedirectURL
	} else {
		resp.OrderID = result.OrderID
	}

	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var initErr *payment.InitiationError

	switch {
	case errors.Is(err, ErrUnauthenticated):
		utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "sign in to place an order")

	case errors.Is(err, menu.ErrItemUnavailable):
		utils.WriteJSONError(w, http.StatusBadRequest, utils.CodeInvalidArgument, err.Error())

	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrMinOrderNotMet),
		errors.Is(err, coupon.ErrAlreadyUsed):
		utils.WriteJSONError(w, http.StatusUnprocessableEntity, utils.CodeFailedPrecondition, err.Error())

	case errors.As(err, &initErr):
		// Surface the gateway's own message so operators can tell gateway
		// failures apart from internal bugs.
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, initErr.Error())

	default:
		logger.FromCtx(r.Context()).Error("checkout failed", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not place order")
	}
}

type orderView struct {
	ID             string          `json:"id"`
	RestaurantID   string          `json:"restaurantId"`
	Items          []Item          `json:"items"`
	Subtotal       int             `json:"subtotal"`
	Discount       int             `json:"discount"`
	PointsRedeemed int             `json:"pointsRedeemed"`
	PointsValue    int             `json:"pointsValue"`
	Total          int             `json:"total"`
	CouponCode     *string         `json:"couponCode,omitempty"`
	PaymentMethod  Method          `json:"paymentMethod"`
	PaymentURL     *string         `json:"paymentUrl,omitempty"`
	Status         Status          `json:"status"`
	ArrivalTime    string          `json:"arrivalTime"`
	CreatedAt      string          `json:"createdAt"`
	HasReview      bool            `json:"hasReview"`
	PaymentDetails json.RawMessage `json:"paymentDetails,omitempty"`
}

func toView(o *Order) orderView {
	return orderView{
		ID:             o.ID,
		RestaurantID:   o.RestaurantID,
		Items:          o.Items,
		Subtotal:       o.Subtotal,
		Discount:       o.Discount,
		PointsRedeemed: o.PointsRedeemed,
		PointsValue:    o.PointsValue,
		Total:          o.Total,
		CouponCode:     o.CouponCode,
		PaymentMethod:  o.PaymentMethod,
		PaymentURL:     o.PaymentURL,
		Status:         o.Status,
		ArrivalTime:    o.ArrivalTime,
		CreatedAt:      o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		HasReview:      o.HasReview,
		PaymentDetails: o.PaymentDetails,
	}
}

// List handles GET /api/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "sign in required")
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), userID)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list orders", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not load orders")
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toView(o))
	}
	utils.WriteJSON(w, http.StatusOK, views)
}

// Detail handles GET /api/orders/{orderID}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "sign in required")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), userID, chi.URLParam(r, "orderID"))
	switch {
	case errors.Is(err, ErrOrderNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, utils.CodeNotFound, "order not found")
	case errors.Is(err, ErrForbidden):
		utils.WriteJSONError(w, http.StatusNotFound, utils.CodeNotFound, "order not found")
	case err != nil:
		logger.FromCtx(r.Context()).Error("failed to load order", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not load order")
	default:
		utils.WriteJSON(w, http.StatusOK, toView(o))
	}
}
