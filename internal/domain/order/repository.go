package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows and pages an order listing.
type ListFilter struct {
	Status    *OrderStatus
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Summary aggregates a customer's order counters.
type Summary struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	CompletedOrders int64           `json:"completed_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	CancelledOrders int64           `json:"cancelled_orders"`
}

// OrderRepository persists orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]*Order, int64, error)
	FindRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*Order, error)
	Summarize(ctx context.Context, customerID uuid.UUID) (*Summary, error)
	Save(ctx context.Context, o *Order) error
	// SaveWithLock persists the order only when its version still matches
	// the loaded one, returning ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
