package handler

import (
	"github.com/gin-gonic/gin"

	shopapp "github.com/gasflow/backend/internal/application/shop"
	"github.com/gasflow/backend/internal/domain/shop"
)

// ShopHandler handles shop and customer registry endpoints
type ShopHandler struct {
	BaseHandler
	shopService *shopapp.ShopService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService *shopapp.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

// ChangeStatusRequest sets a shop's operational status.
type ChangeStatusRequest struct {
	Status shop.ShopStatus `json:"status" binding:"required"`
}

// Register creates a shop and seeds its stock ledger.
func (h *ShopHandler) Register(c *gin.Context) {
	var req shopapp.RegisterShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.shopService.RegisterShop(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, created)
}

// Get retrieves a shop by ID.
func (h *ShopHandler) Get(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	s, err := h.shopService.GetShop(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, s)
}

// List returns shops matching the optional status, city, and district filters.
func (h *ShopHandler) List(c *gin.Context) {
	filter := shop.ShopFilter{
		City:     c.Query("city"),
		District: c.Query("district"),
	}
	if raw := c.Query("status"); raw != "" {
		status := shop.ShopStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown shop status: "+raw)
			return
		}
		filter.Status = &status
	}

	shops, err := h.shopService.ListShops(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shops)
}

// ChangeStatus updates a shop's operational status.
func (h *ShopHandler) ChangeStatus(c *gin.Context) {
	shopID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	s, err := h.shopService.ChangeShopStatus(c.Request.Context(), shopID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, s)
}

// RegisterCustomer creates a customer record.
func (h *ShopHandler) RegisterCustomer(c *gin.Context) {
	var req shopapp.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.shopService.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, created)
}
