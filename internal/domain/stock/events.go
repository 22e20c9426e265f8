package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/gasflow/backend/internal/domain/shared"
)

// StockMovementRecordedEvent is raised for every quantity mutation on a ledger
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	ShopID            uuid.UUID   `json:"shop_id"`
	Brand             GasBrand    `json:"brand"`
	GasType           GasType     `json:"gas_type"`
	Action            StockAction `json:"action"`
	Quantity          int         `json:"quantity"`
	AvailableQuantity int         `json:"available_quantity"`
}

// NewStockMovementRecordedEvent creates a new stock movement event
func NewStockMovementRecordedEvent(ledgerID, shopID uuid.UUID, brand GasBrand, gasType GasType, action StockAction, quantity, available int) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("stock.movement_recorded", "StockLedger", ledgerID),
		ShopID:            shopID,
		Brand:             brand,
		GasType:           gasType,
		Action:            action,
		Quantity:          quantity,
		AvailableQuantity: available,
	}
}

// StockReservedEvent is raised when stock is held for a paid order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ShopID   uuid.UUID `json:"shop_id"`
	Brand    GasBrand  `json:"brand"`
	GasType  GasType   `json:"gas_type"`
	Quantity int       `json:"quantity"`
	OrderRef string    `json:"order_ref"`
}

// NewStockReservedEvent creates a new stock reserved event
func NewStockReservedEvent(ledgerID, shopID uuid.UUID, brand GasBrand, gasType GasType, quantity int, orderRef string) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("stock.reserved", "StockLedger", ledgerID),
		ShopID:          shopID,
		Brand:           brand,
		GasType:         gasType,
		Quantity:        quantity,
		OrderRef:        orderRef,
	}
}

// ArrivalScheduledEvent is raised when a replenishment is booked for a line
type ArrivalScheduledEvent struct {
	shared.BaseDomainEvent
	ShopID           uuid.UUID `json:"shop_id"`
	Brand            GasBrand  `json:"brand"`
	GasType          GasType   `json:"gas_type"`
	ArrivalDate      time.Time `json:"arrival_date"`
	ExpectedQuantity int       `json:"expected_quantity"`
}

// NewArrivalScheduledEvent creates a new arrival scheduled event
func NewArrivalScheduledEvent(ledgerID, shopID uuid.UUID, brand GasBrand, gasType GasType, arrivalDate time.Time, expectedQuantity int) *ArrivalScheduledEvent {
	return &ArrivalScheduledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("stock.arrival_scheduled", "StockLedger", ledgerID),
		ShopID:           shopID,
		Brand:            brand,
		GasType:          gasType,
		ArrivalDate:      arrivalDate,
		ExpectedQuantity: expectedQuantity,
	}
}

// ArrivalExecutedEvent is raised when a due arrival is credited into stock
type ArrivalExecutedEvent struct {
	shared.BaseDomainEvent
	ShopID           uuid.UUID `json:"shop_id"`
	Brand            GasBrand  `json:"brand"`
	GasType          GasType   `json:"gas_type"`
	CreditedQuantity int       `json:"credited_quantity"`
}

// NewArrivalExecutedEvent creates a new arrival executed event
func NewArrivalExecutedEvent(ledgerID, shopID uuid.UUID, brand GasBrand, gasType GasType, creditedQuantity int) *ArrivalExecutedEvent {
	return &ArrivalExecutedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("stock.arrival_executed", "StockLedger", ledgerID),
		ShopID:           shopID,
		Brand:            brand,
		GasType:          gasType,
		CreditedQuantity: creditedQuantity,
	}
}
