package order

import (
	"github.com/google/uuid"

	"github.com/gasflow/backend/internal/domain/shared"
)

// OrderCreatedEvent is raised when a new order enters the system
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewOrderCreatedEvent creates a new order created event
func NewOrderCreatedEvent(orderID uuid.UUID, orderNumber string, customerID uuid.UUID) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("order.created", "Order", orderID),
		OrderNumber:     orderNumber,
		CustomerID:      customerID,
	}
}

// OrderStatusChangedEvent is raised on every state machine transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	FromStatus  OrderStatus `json:"from_status"`
	ToStatus    OrderStatus `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new order status changed event
func NewOrderStatusChangedEvent(orderID uuid.UUID, orderNumber string, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("order.status_changed", "Order", orderID),
		OrderNumber:     orderNumber,
		FromStatus:      from,
		ToStatus:        to,
	}
}
