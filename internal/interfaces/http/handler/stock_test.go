package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	stockapp "github.com/gasflow/backend/internal/application/stock"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

func setupStockTestRouter() (*gin.Engine, *MockLedgerRepository, *StockHandler) {
	gin.SetMode(gin.TestMode)

	ledgerRepo := new(MockLedgerRepository)
	manager := stockapp.NewStockManager(ledgerRepo, nil, nil)
	h := NewStockHandler(manager)

	return gin.New(), ledgerRepo, h
}

func testLedger(t *testing.T, shopID uuid.UUID) *stock.StockLedger {
	t.Helper()
	ledger, err := stock.NewStockLedger(shopID)
	assert.NoError(t, err)
	return ledger
}

func TestStockHandler_GetLedger(t *testing.T) {
	t.Run("returns shop ledger", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.GET("/stock/:shopId", h.GetLedger)

		shopID := uuid.New()
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(testLedger(t, shopID), nil)

		req, _ := http.NewRequest(http.MethodGet, "/stock/"+shopID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))

		ledgerRepo.AssertExpectations(t)
	})

	t.Run("returns 404 for shop without ledger", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.GET("/stock/:shopId", h.GetLedger)

		shopID := uuid.New()
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/stock/"+shopID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStockHandler_ApplyAction(t *testing.T) {
	t.Run("applies restock and persists with lock", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.POST("/stock/:shopId/actions", h.ApplyAction)

		shopID := uuid.New()
		ledger := testLedger(t, shopID)
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(ledger, nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(nil)

		body, _ := json.Marshal(stockapp.ApplyActionRequest{
			Brand:    stock.BrandLaugfs,
			GasType:  "Medium",
			Quantity: 25,
			Action:   stock.ActionRestock,
			Reason:   "Weekly delivery",
			Actor:    "agent-1",
			Role:     "agent",
		})
		req, _ := http.NewRequest(http.MethodPost, "/stock/"+shopID.String()+"/actions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("returns 409 when the version check fails", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.POST("/stock/:shopId/actions", h.ApplyAction)

		shopID := uuid.New()
		ledger := testLedger(t, shopID)
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(ledger, nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(shared.ErrConcurrencyConflict)

		body, _ := json.Marshal(stockapp.ApplyActionRequest{
			Brand:    stock.BrandLitro,
			GasType:  "Large",
			Quantity: 5,
			Action:   stock.ActionRestock,
			Actor:    "agent-1",
		})
		req, _ := http.NewRequest(http.MethodPost, "/stock/"+shopID.String()+"/actions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		router, _, h := setupStockTestRouter()
		router.POST("/stock/:shopId/actions", h.ApplyAction)

		req, _ := http.NewRequest(http.MethodPost, "/stock/"+uuid.NewString()+"/actions",
			bytes.NewBufferString(`{"gas_brand":`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStockHandler_ScheduleArrival(t *testing.T) {
	t.Run("books the next arrival for a line", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.POST("/stock/:shopId/arrivals", h.ScheduleArrival)

		shopID := uuid.New()
		ledger := testLedger(t, shopID)
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(ledger, nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(nil)

		body, _ := json.Marshal(stockapp.ScheduleArrivalRequest{
			Brand:            stock.BrandLaugfs,
			GasType:          "Medium",
			ArrivalDate:      time.Now().Add(72 * time.Hour),
			ExpectedQuantity: 40,
			ScheduledBy:      "agent-1",
		})
		req, _ := http.NewRequest(http.MethodPost, "/stock/"+shopID.String()+"/arrivals", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		line, err := ledger.FindLine(stock.BrandLaugfs, "Medium")
		assert.NoError(t, err)
		assert.True(t, line.NextArrival.IsPending())
	})
}

func TestStockHandler_CheckAvailability(t *testing.T) {
	t.Run("reports availability for a shop line", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.GET("/stock/availability", h.CheckAvailability)

		shopID := uuid.New()
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(testLedger(t, shopID), nil)

		req, _ := http.NewRequest(http.MethodGet,
			"/stock/availability?shop_id="+shopID.String()+"&gas_brand=Laugfs&gas_type=Medium&quantity=3", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(3), data["requested_quantity"])
	})

	t.Run("returns 400 when no backend reference is given", func(t *testing.T) {
		router, _, h := setupStockTestRouter()
		router.GET("/stock/availability", h.CheckAvailability)

		req, _ := http.NewRequest(http.MethodGet, "/stock/availability?gas_brand=Laugfs&gas_type=Medium", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStockHandler_GetHistory(t *testing.T) {
	t.Run("returns recent movements", func(t *testing.T) {
		router, ledgerRepo, h := setupStockTestRouter()
		router.GET("/stock/:shopId/history", h.GetHistory)

		shopID := uuid.New()
		ledger := testLedger(t, shopID)
		ledgerRepo.On("FindByShopID", mock.Anything, shopID).Return(ledger, nil)
		ledgerRepo.On("FindHistory", mock.Anything, ledger.ID, 10).Return([]stock.HistoryEntry{}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/stock/"+shopID.String()+"/history?limit=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		ledgerRepo.AssertExpectations(t)
	})
}
