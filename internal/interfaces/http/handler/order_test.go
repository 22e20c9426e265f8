package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	orderapp "github.com/gasflow/backend/internal/application/order"
	stockapp "github.com/gasflow/backend/internal/application/stock"
	"github.com/gasflow/backend/internal/domain/order"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

// MockOrderRepository implements order.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter order.ListFilter) ([]*order.Order, int64, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Summarize(ctx context.Context, customerID uuid.UUID) (*order.Summary, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Summary), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ order.OrderRepository = (*MockOrderRepository)(nil)

// MockStockOps implements orderapp.StockOperations for testing
type MockStockOps struct {
	mock.Mock
}

func (m *MockStockOps) ReserveStock(ctx context.Context, ref stockapp.StockRef, req stockapp.StockRequest, orderRef string) *stockapp.StockOperationResult {
	args := m.Called(ctx, ref, req, orderRef)
	return args.Get(0).(*stockapp.StockOperationResult)
}

func (m *MockStockOps) DeductStock(ctx context.Context, ref stockapp.StockRef, req stockapp.StockRequest, orderRef string) *stockapp.StockOperationResult {
	args := m.Called(ctx, ref, req, orderRef)
	return args.Get(0).(*stockapp.StockOperationResult)
}

func (m *MockStockOps) RestoreStock(ctx context.Context, ref stockapp.StockRef, req stockapp.StockRequest, orderRef, reason string) *stockapp.StockOperationResult {
	args := m.Called(ctx, ref, req, orderRef, reason)
	return args.Get(0).(*stockapp.StockOperationResult)
}

func (m *MockStockOps) CheckAvailability(ctx context.Context, ref stockapp.StockRef, req stockapp.StockRequest) *stockapp.AvailabilityResult {
	args := m.Called(ctx, ref, req)
	return args.Get(0).(*stockapp.AvailabilityResult)
}

var _ orderapp.StockOperations = (*MockStockOps)(nil)

// Test helpers

func setupOrderTestRouter() (*gin.Engine, *MockOrderRepository, *MockStockOps, *OrderHandler) {
	gin.SetMode(gin.TestMode)

	orderRepo := new(MockOrderRepository)
	stockOps := new(MockStockOps)
	service := orderapp.NewOrderService(orderRepo, nil, stockOps, nil, nil)
	h := NewOrderHandler(service)

	return gin.New(), orderRepo, stockOps, h
}

func newTestOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	shopID := uuid.New()
	o, err := order.NewOrder(order.NewOrderParams{
		CustomerID: customerID,
		ShopID:     &shopID,
		Details: order.OrderDetails{
			Brand:      stock.BrandLaugfs,
			GasType:    "Medium",
			Quantity:   2,
			UnitPrice:  decimal.NewFromInt(4100),
			TotalPrice: decimal.NewFromInt(8200),
		},
		Delivery: order.DeliveryInfo{
			Address:       "45 Temple Road, Kandy",
			ContactNumber: "+94771234567",
			PreferredDate: time.Now().Add(48 * time.Hour),
		},
	})
	assert.NoError(t, err)
	return o
}

// Tests

func TestOrderHandler_Get(t *testing.T) {
	t.Run("returns order scoped to customer", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.GET("/orders/:id", h.Get)

		customerID := uuid.New()
		o := newTestOrder(t, customerID)
		orderRepo.On("FindByIDForCustomer", mock.Anything, o.ID, customerID).Return(o, nil)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+o.ID.String()+"?customer_id="+customerID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))

		orderRepo.AssertExpectations(t)
	})

	t.Run("returns 404 for another customer's order", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.GET("/orders/:id", h.Get)

		orderID := uuid.New()
		customerID := uuid.New()
		orderRepo.On("FindByIDForCustomer", mock.Anything, orderID, customerID).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+orderID.String()+"?customer_id="+customerID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 when customer ID is missing", func(t *testing.T) {
		router, _, _, h := setupOrderTestRouter()
		router.GET("/orders/:id", h.Get)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_List(t *testing.T) {
	t.Run("passes filters through and returns meta", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.GET("/orders", h.List)

		customerID := uuid.New()
		pending := order.StatusPending
		o := newTestOrder(t, customerID)
		orderRepo.On("FindByCustomer", mock.Anything, customerID,
			order.ListFilter{Status: &pending, Page: 1, Limit: 20}).
			Return([]*order.Order{o}, int64(1), nil)

		req, _ := http.NewRequest(http.MethodGet,
			"/orders?customer_id="+customerID.String()+"&status=Pending", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["total"])

		orderRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		router, _, _, h := setupOrderTestRouter()
		router.GET("/orders", h.List)

		req, _ := http.NewRequest(http.MethodGet, "/orders?customer_id="+uuid.NewString()+"&status=Bogus", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Track(t *testing.T) {
	t.Run("returns tracking view by order number", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.GET("/orders/track/:orderNumber", h.Track)

		o := newTestOrder(t, uuid.New())
		orderRepo.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)

		req, _ := http.NewRequest(http.MethodGet, "/orders/track/"+o.OrderNumber, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, o.OrderNumber, data["order_number"])
		assert.Equal(t, "Pending", data["status"])
	})

	t.Run("returns 404 for unknown order number", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.GET("/orders/track/:orderNumber", h.Track)

		orderRepo.On("FindByOrderNumber", mock.Anything, "ORD-00000000").Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/orders/track/ORD-00000000", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	t.Run("cancels confirmed order and restores stock", func(t *testing.T) {
		router, orderRepo, stockOps, h := setupOrderTestRouter()
		router.POST("/orders/:id/cancel", h.Cancel)

		customerID := uuid.New()
		o := newTestOrder(t, customerID)
		assert.NoError(t, o.TransitionTo(order.StatusConfirmed, "agent-1", ""))
		orderRepo.On("FindByIDForCustomer", mock.Anything, o.ID, customerID).Return(o, nil)
		stockOps.On("RestoreStock", mock.Anything, mock.Anything, mock.Anything, o.OrderNumber, mock.Anything).
			Return(&stockapp.StockOperationResult{Success: true})
		orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

		body, _ := json.Marshal(CancelOrderRequest{
			CustomerID: customerID.String(),
			Reason:     "Changed my mind",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders/"+o.ID.String()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.StatusCancelled, o.Status)

		orderRepo.AssertExpectations(t)
		stockOps.AssertExpectations(t)
	})

	t.Run("returns 400 when reason is missing", func(t *testing.T) {
		router, _, _, h := setupOrderTestRouter()
		router.POST("/orders/:id/cancel", h.Cancel)

		body, _ := json.Marshal(map[string]interface{}{"customer_id": uuid.NewString()})
		req, _ := http.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/cancel", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("rejects confirm through the status endpoint", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.PUT("/orders/:id/status", h.UpdateStatus)

		o := newTestOrder(t, uuid.New())
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		body, _ := json.Marshal(orderapp.UpdateStatusRequest{
			Status:    order.StatusConfirmed,
			UpdatedBy: "agent-1",
		})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects skipping ahead in the lifecycle", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.PUT("/orders/:id/status", h.UpdateStatus)

		o := newTestOrder(t, uuid.New())
		orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		body, _ := json.Marshal(orderapp.UpdateStatusRequest{
			Status:    order.StatusOutForDelivery,
			UpdatedBy: "agent-1",
		})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Summary(t *testing.T) {
	t.Run("returns counters and recent orders", func(t *testing.T) {
		router, orderRepo, _, h := setupOrderTestRouter()
		router.GET("/orders/summary", h.Summary)

		customerID := uuid.New()
		orderRepo.On("Summarize", mock.Anything, customerID).Return(&order.Summary{
			TotalOrders:     3,
			TotalSpent:      decimal.NewFromInt(24600),
			CompletedOrders: 2,
			PendingOrders:   1,
		}, nil)
		orderRepo.On("FindRecentByCustomer", mock.Anything, customerID, 5).
			Return([]*order.Order{newTestOrder(t, customerID)}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/orders/summary?customer_id="+customerID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		summary := data["summary"].(map[string]interface{})
		assert.Equal(t, float64(3), summary["total_orders"])

		orderRepo.AssertExpectations(t)
	})
}
