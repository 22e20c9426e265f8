package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

// StockRef selects which stock backend an order draws from. Exactly one of
// the two references must be set.
type StockRef struct {
	ShopID        *uuid.UUID `json:"shop_id,omitempty"`
	LegacyStockID *uuid.UUID `json:"legacy_stock_id,omitempty"`
}

// Validate ensures the reference points at exactly one backend
func (r StockRef) Validate() error {
	if (r.ShopID == nil) == (r.LegacyStockID == nil) {
		return shared.NewDomainError("INVALID_INPUT", "exactly one of shopId or gasStockId must be provided")
	}
	return nil
}

// ShopRef builds a reference to a shop ledger
func ShopRef(shopID uuid.UUID) StockRef {
	return StockRef{ShopID: &shopID}
}

// LegacyRef builds a reference to a legacy stock record
func LegacyRef(stockID uuid.UUID) StockRef {
	return StockRef{LegacyStockID: &stockID}
}

// StockRequest identifies the line and quantity an operation applies to.
// GasType accepts both the qualitative and the weight vocabulary.
type StockRequest struct {
	Brand    stock.GasBrand `json:"gas_brand"`
	GasType  string         `json:"gas_type"`
	Quantity int            `json:"quantity"`
}

// StockOperationResult is the structured outcome of a stock operation.
// Operations never return raw errors across this boundary; failures come
// back as Success=false with a descriptive message.
type StockOperationResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AvailableQuantity int    `json:"available_quantity,omitempty"`
	ReservedQuantity  int    `json:"reserved_quantity,omitempty"`
}

// AvailabilityResult is the outcome of a non-mutating stock check.
type AvailabilityResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	Available         bool   `json:"available"`
	AvailableQuantity int    `json:"available_quantity"`
	RequestedQuantity int    `json:"requested_quantity"`
	Shortage          int    `json:"shortage"`
}

// ApplyActionRequest is a manual ledger mutation performed by an agent.
type ApplyActionRequest struct {
	Brand    stock.GasBrand    `json:"gas_brand" binding:"required"`
	GasType  string            `json:"gas_type" binding:"required"`
	Quantity int               `json:"quantity"`
	Action   stock.StockAction `json:"action" binding:"required"`
	Reason   string            `json:"reason"`
	Actor    string            `json:"actor"`
	Role     string            `json:"role"`
}

// ScheduleArrivalRequest books the next replenishment for a line.
type ScheduleArrivalRequest struct {
	Brand            stock.GasBrand `json:"gas_brand" binding:"required"`
	GasType          string         `json:"gas_type" binding:"required"`
	ArrivalDate      time.Time      `json:"arrival_date" binding:"required"`
	ExpectedQuantity int            `json:"expected_quantity" binding:"required"`
	ScheduledBy      string         `json:"scheduled_by"`
	Notes            string         `json:"notes"`
}
