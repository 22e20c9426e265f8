package handler

import (
	"github.com/gin-gonic/gin"

	orderapp "github.com/gasflow/backend/internal/application/order"
	"github.com/gasflow/backend/internal/domain/order"
	"github.com/gasflow/backend/internal/interfaces/http/dto"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CancelOrderRequest carries the customer's cancellation reason.
type CancelOrderRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Reason     string `json:"reason" binding:"required"`
	By         string `json:"cancelled_by,omitempty"`
}

// ConfirmOrderRequest identifies who confirmed the order.
type ConfirmOrderRequest struct {
	ConfirmedBy string `json:"confirmed_by,omitempty"`
}

// ReturnOrderRequest carries the return reason.
type ReturnOrderRequest struct {
	Reason    string `json:"reason" binding:"required"`
	UpdatedBy string `json:"updated_by,omitempty"`
}

// Create submits a new order. The Idempotency-Key header takes precedence
// over the body field when both are present.
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	created, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, created)
}

// Get retrieves an order scoped to the requesting customer.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	customerID, err := parseUUIDQuery(c, "customer_id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// List pages a customer's orders with optional status filtering.
func (h *OrderHandler) List(c *gin.Context) {
	customerID, err := parseUUIDQuery(c, "customer_id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	listReq.Normalize()

	filter := order.ListFilter{
		Page:      listReq.Page,
		Limit:     listReq.Limit,
		SortBy:    listReq.SortBy,
		SortOrder: listReq.SortOrder,
	}
	if raw := c.Query("status"); raw != "" {
		status := order.OrderStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown order status: "+raw)
			return
		}
		filter.Status = &status
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result, result.TotalOrders, result.CurrentPage, listReq.Limit)
}

// Summary returns a customer's order counters and recent orders.
func (h *OrderHandler) Summary(c *gin.Context) {
	customerID, err := parseUUIDQuery(c, "customer_id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	summary, err := h.orderService.GetSummary(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Track returns the public tracking view for an order number.
func (h *OrderHandler) Track(c *gin.Context) {
	orderNumber := c.Param("orderNumber")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	tracking, err := h.orderService.TrackOrder(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tracking)
}

// Confirm transitions a pending order to Confirmed.
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	o, err := h.orderService.ConfirmOrder(c.Request.Context(), orderID, req.ConfirmedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// Cancel cancels an order on behalf of its customer.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	customerID, err := parseUUID(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	o, err := h.orderService.CancelOrder(c.Request.Context(), orderID, customerID, req.Reason, req.By)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// Return marks a delivered or in-flight order as returned.
func (h *OrderHandler) Return(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req ReturnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	o, err := h.orderService.ReturnOrder(c.Request.Context(), orderID, req.Reason, req.UpdatedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// UpdateStatus applies an agent-side status transition.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req orderapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// Rate records a customer's post-delivery rating.
func (h *OrderHandler) Rate(c *gin.Context) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	customerID, err := parseUUIDQuery(c, "customer_id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	var req orderapp.RateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	o, err := h.orderService.RateOrder(c.Request.Context(), orderID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}
