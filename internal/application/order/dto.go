package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gasflow/backend/internal/domain/order"
	"github.com/gasflow/backend/internal/domain/stock"
)

// CreateOrderRequest is the submission payload. Either ShopID (ledger-backed)
// or GasStockID (legacy-backed) must be set; legacy orders are priced
// server-side from the published price table.
type CreateOrderRequest struct {
	CustomerID     uuid.UUID            `json:"customer_id"`
	ShopID         *uuid.UUID           `json:"shop_id,omitempty"`
	GasStockID     *uuid.UUID           `json:"gas_stock_id,omitempty"`
	Details        *OrderDetailsRequest `json:"order_details,omitempty"`
	Delivery       DeliveryRequest      `json:"delivery_info"`
	Payment        PaymentRequest       `json:"payment_info"`
	Quantity       int                  `json:"quantity,omitempty"`
	Region         string               `json:"region,omitempty"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

// OrderDetailsRequest carries the priced line for shop-backed orders.
type OrderDetailsRequest struct {
	Brand      stock.GasBrand  `json:"gas_brand" binding:"required"`
	GasType    string          `json:"gas_type" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// DeliveryRequest carries the delivery details of a submission.
type DeliveryRequest struct {
	Address       string    `json:"delivery_address" binding:"required"`
	ContactNumber string    `json:"contact_number" binding:"required"`
	PreferredDate time.Time `json:"preferred_delivery_date" binding:"required"`
	Instructions  string    `json:"delivery_instructions,omitempty"`
}

// PaymentRequest carries the payment details of a submission.
type PaymentRequest struct {
	Method        order.PaymentMethod `json:"payment_method,omitempty"`
	Status        order.PaymentStatus `json:"payment_status,omitempty"`
	TransactionID string              `json:"transaction_id,omitempty"`
}

// UpdateStatusRequest is an agent-side transition with a free-text note.
type UpdateStatusRequest struct {
	Status    order.OrderStatus `json:"status" binding:"required"`
	UpdatedBy string            `json:"updated_by"`
	Notes     string            `json:"notes,omitempty"`
}

// RateOrderRequest records a customer's post-delivery rating.
type RateOrderRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review,omitempty"`
}

// TrackingResponse is the public tracking view of an order.
type TrackingResponse struct {
	OrderNumber       string                     `json:"order_number"`
	Status            order.OrderStatus          `json:"status"`
	Progress          int                        `json:"progress"`
	StatusHistory     []order.StatusHistoryEntry `json:"status_history"`
	EstimatedDelivery *time.Time                 `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time                 `json:"actual_delivery,omitempty"`
	Details           order.OrderDetails         `json:"order_details"`
}

// OrderListResponse pages a customer's orders.
type OrderListResponse struct {
	Orders      []*order.Order `json:"orders"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
	TotalOrders int64          `json:"total_orders"`
	HasNextPage bool           `json:"has_next_page"`
	HasPrevPage bool           `json:"has_prev_page"`
}

// SummaryResponse bundles a customer's counters with their latest orders.
type SummaryResponse struct {
	Summary      *order.Summary `json:"summary"`
	RecentOrders []*order.Order `json:"recent_orders"`
}
