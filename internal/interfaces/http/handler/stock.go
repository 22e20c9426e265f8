package handler

import (
	"github.com/gin-gonic/gin"

	stockapp "github.com/gasflow/backend/internal/application/stock"
	"github.com/gasflow/backend/internal/domain/stock"
)

// StockHandler handles stock-related API endpoints
type StockHandler struct {
	BaseHandler
	stockManager *stockapp.StockManager
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockManager *stockapp.StockManager) *StockHandler {
	return &StockHandler{stockManager: stockManager}
}

// CancelArrivalRequest identifies the scheduled arrival to drop.
type CancelArrivalRequest struct {
	Brand       stock.GasBrand `json:"gas_brand" binding:"required"`
	GasType     string         `json:"gas_type" binding:"required"`
	CancelledBy string         `json:"cancelled_by"`
}

// GetLedger returns a shop's full stock ledger with derived totals and alerts.
func (h *StockHandler) GetLedger(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "shopId")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	ledger, err := h.stockManager.GetLedger(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ledger)
}

// GetHistory returns recent stock movements for a shop, newest first.
func (h *StockHandler) GetHistory(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "shopId")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}
	limit := intQuery(c, "limit", 50)

	history, err := h.stockManager.GetHistory(c.Request.Context(), shopID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// ApplyAction applies a manual restock, deduction, or adjustment to a line.
func (h *StockHandler) ApplyAction(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "shopId")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}
	var req stockapp.ApplyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ledger, err := h.stockManager.ApplyStockAction(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ledger)
}

// ScheduleArrival books the next replenishment for a line.
func (h *StockHandler) ScheduleArrival(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "shopId")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}
	var req stockapp.ScheduleArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ledger, err := h.stockManager.ScheduleArrival(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ledger)
}

// CancelArrival drops a scheduled arrival without touching on-hand stock.
func (h *StockHandler) CancelArrival(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "shopId")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}
	var req CancelArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ledger, err := h.stockManager.CancelArrival(c.Request.Context(), shopID, req.Brand, req.GasType, req.CancelledBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ledger)
}

// CheckAvailability reports whether a quantity can be served, without
// mutating anything. The backend reference comes from query parameters so
// storefronts can issue plain GETs.
func (h *StockHandler) CheckAvailability(c *gin.Context) {
	ref := stockapp.StockRef{}
	if raw := c.Query("shop_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "Invalid shop ID")
			return
		}
		ref.ShopID = &id
	}
	if raw := c.Query("gas_stock_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "Invalid gas stock ID")
			return
		}
		ref.LegacyStockID = &id
	}
	if err := ref.Validate(); err != nil {
		h.HandleError(c, err)
		return
	}

	req := stockapp.StockRequest{
		Brand:    stock.GasBrand(c.Query("gas_brand")),
		GasType:  c.Query("gas_type"),
		Quantity: intQuery(c, "quantity", 1),
	}

	result := h.stockManager.CheckAvailability(c.Request.Context(), ref, req)
	h.Success(c, result)
}
