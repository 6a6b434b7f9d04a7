package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snacket-be/internal/order"
	"snacket-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecentOrders struct {
	mock.Mock
}

func (m *MockRecentOrders) LatestByUser(ctx context.Context, userID string, createdAfter time.Time) (*order.Order, error) {
	args := m.Called(ctx, userID, createdAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func TestResolve_ExplicitIDWins(t *testing.T) {
	orders := new(MockRecentOrders)
	r := NewResolver(orders)

	id, err := r.Resolve(context.Background(), "user-1", Hint{
		OrderID:        "ord-1",
		TransactionRef: "SNCT_other",
	})

	require.NoError(t, err)
	assert.Equal(t, "ord-1", id)
	orders.AssertNotCalled(t, "LatestByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_TransactionRefStripped(t *testing.T) {
	r := NewResolver(new(MockRecentOrders))

	id, err := r.Resolve(context.Background(), "user-1", Hint{TransactionRef: "SNCT_ord-7"})

	require.NoError(t, err)
	assert.Equal(t, "ord-7", id)
}

func TestResolve_RecentOrderFallback(t *testing.T) {
	orders := new(MockRecentOrders)
	r := NewResolver(orders)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	orders.On("LatestByUser", mock.Anything, "user-1", now.Add(-RecentWindow)).
		Return(&order.Order{ID: "ord-3"}, nil)

	// a foreign reference without the merchant prefix is ignored
	id, err := r.Resolve(context.Background(), "user-1", Hint{TransactionRef: "TXN-12345"})

	require.NoError(t, err)
	assert.Equal(t, "ord-3", id)
	orders.AssertExpectations(t)
}

func TestResolve_NothingTrackable(t *testing.T) {
	orders := new(MockRecentOrders)
	r := NewResolver(orders)

	orders.On("LatestByUser", mock.Anything, "user-1", mock.Anything).
		Return(nil, order.ErrOrderNotFound)

	_, err := r.Resolve(context.Background(), "user-1", Hint{})
	assert.ErrorIs(t, err, ErrNoTrackableOrder)
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	orders := new(MockRecentOrders)
	r := NewResolver(orders)

	orders.On("LatestByUser", mock.Anything, "user-1", mock.Anything).
		Return(nil, errors.New("db down"))

	_, err := r.Resolve(context.Background(), "user-1", Hint{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTrackableOrder)
}

type MockOrderGetter struct {
	mock.Mock
}

func (m *MockOrderGetter) GetByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func trackRequest(t *testing.T, h *Handler, userID, query string) trackResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/track"+query, nil)
	if userID != "" {
		req = req.WithContext(utils.SetUserContext(req.Context(), userID, ""))
	}
	rec := httptest.NewRecorder()
	h.Track(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp trackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTrack_ExplicitOrder(t *testing.T) {
	getter := new(MockOrderGetter)
	h := NewHandler(NewResolver(new(MockRecentOrders)), getter)

	getter.On("GetByID", mock.Anything, "ord-1").
		Return(&order.Order{ID: "ord-1", UserID: "user-1", Status: order.StatusPreparing}, nil)

	resp := trackRequest(t, h, "user-1", "?orderId=ord-1")

	assert.Equal(t, "ord-1", resp.OrderID)
	assert.Equal(t, StateSuccess, resp.State)
	assert.Equal(t, string(order.StatusPreparing), resp.Status)
}

func TestTrack_MissingIDIsNotAnError(t *testing.T) {
	orders := new(MockRecentOrders)
	orders.On("LatestByUser", mock.Anything, "user-1", mock.Anything).
		Return(nil, order.ErrOrderNotFound)
	h := NewHandler(NewResolver(orders), new(MockOrderGetter))

	resp := trackRequest(t, h, "user-1", "")
	assert.Equal(t, StateMissingID, resp.State)
	assert.Empty(t, resp.OrderID)
}

func TestTrack_ForeignOrderHidden(t *testing.T) {
	getter := new(MockOrderGetter)
	h := NewHandler(NewResolver(new(MockRecentOrders)), getter)

	getter.On("GetByID", mock.Anything, "ord-1").
		Return(&order.Order{ID: "ord-1", UserID: "someone-else", Status: order.StatusPending}, nil)

	resp := trackRequest(t, h, "user-1", "?orderId=ord-1")
	assert.Equal(t, StateMissingID, resp.State)
}

func TestTrack_Unauthenticated(t *testing.T) {
	h := NewHandler(NewResolver(new(MockRecentOrders)), new(MockOrderGetter))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/track", nil)
	rec := httptest.NewRecorder()
	h.Track(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
