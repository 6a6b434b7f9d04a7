package tracker

import (
	"context"
	"errors"
	"net/http"

	"snacket-be/internal/logger"
	"snacket-be/internal/order"
	"snacket-be/internal/utils"

	"go.uber.org/zap"
)

// OrderGetter loads the resolved order for its current status.
type OrderGetter interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
}

type Handler struct {
	resolver *Resolver
	orders   OrderGetter
}

func NewHandler(resolver *Resolver, orders OrderGetter) *Handler {
	return &Handler{resolver: resolver, orders: orders}
}

type trackResponse struct {
	OrderID string    `json:"orderId,omitempty"`
	State   ViewState `json:"state"`
	Status  string    `json:"status,omitempty"`
}

// Track handles GET /api/orders/track?orderId=...&ref=...
//
// missing_id is a regular response, not an error: the client shows a
// non-blocking escape hatch instead of a spinner.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, utils.CodeUnauthenticated, "sign in required")
		return
	}

	hint := Hint{
		OrderID:        r.URL.Query().Get("orderId"),
		TransactionRef: r.URL.Query().Get("ref"),
	}

	orderID, err := h.resolver.Resolve(r.Context(), userID, hint)
	if errors.Is(err, ErrNoTrackableOrder) {
		utils.WriteJSON(w, http.StatusOK, trackResponse{State: StateMissingID})
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to resolve tracking target", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not resolve order")
		return
	}

	o, err := h.orders.GetByID(r.Context(), orderID)
	if errors.Is(err, order.ErrOrderNotFound) {
		utils.WriteJSON(w, http.StatusOK, trackResponse{State: StateMissingID})
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to load tracked order", zap.Error(err))
		utils.WriteJSONError(w, http.StatusInternalServerError, utils.CodeInternal, "could not load order")
		return
	}
	if o.UserID != userID {
		utils.WriteJSON(w, http.StatusOK, trackResponse{State: StateMissingID})
		return
	}

	utils.WriteJSON(w, http.StatusOK, trackResponse{
		OrderID: o.ID,
		State:   StateFor(o.Status),
		Status:  string(o.Status),
	})
}
