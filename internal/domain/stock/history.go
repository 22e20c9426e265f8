package stock

import (
	"time"

	"github.com/google/uuid"
)

// StockAction is the closed set of ledger movements. Anything outside this
// set is rejected before it can touch quantities.
type StockAction string

const (
	ActionRestock    StockAction = "restock"
	ActionSale       StockAction = "sale"
	ActionReturn     StockAction = "return"
	ActionDamage     StockAction = "damage"
	ActionAdjustment StockAction = "adjustment"
	ActionReserve    StockAction = "reserve"
	ActionRelease    StockAction = "release"
)

// IsValid checks if the action is a known StockAction
func (a StockAction) IsValid() bool {
	switch a {
	case ActionRestock, ActionSale, ActionReturn, ActionDamage, ActionAdjustment, ActionReserve, ActionRelease:
		return true
	}
	return false
}

// String returns the string representation of StockAction
func (a StockAction) String() string {
	return string(a)
}

// HistoryEntry is one append-only audit record of a ledger movement.
// Entries are never updated or deleted after creation.
type HistoryEntry struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	LedgerID         uuid.UUID   `gorm:"type:uuid;not null;index" json:"ledger_id"`
	Brand            GasBrand    `gorm:"size:50;not null" json:"brand"`
	GasType          GasType     `gorm:"size:20;not null" json:"gas_type"`
	Action           StockAction `gorm:"size:20;not null" json:"action"`
	Quantity         int         `gorm:"not null" json:"quantity"`
	PreviousQuantity int         `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int         `gorm:"not null" json:"new_quantity"`
	Reason           string      `gorm:"size:500" json:"reason,omitempty"`
	PerformedBy      string      `gorm:"size:255" json:"performed_by,omitempty"`
	PerformedByRole  string      `gorm:"size:50" json:"performed_by_role,omitempty"`
	OrderID          string      `gorm:"size:50" json:"order_id,omitempty"`
	CreatedAt        time.Time   `gorm:"not null;index" json:"created_at"`
}

// TableName returns the table name for HistoryEntry
func (HistoryEntry) TableName() string {
	return "stock_history"
}

// Delta is the signed change in available quantity recorded by this entry
func (h *HistoryEntry) Delta() int {
	return h.NewQuantity - h.PreviousQuantity
}

// MovementContext carries the audit metadata attached to a ledger movement.
type MovementContext struct {
	Reason          string
	PerformedBy     string
	PerformedByRole string
	OrderID         string
}

func newHistoryEntry(ledgerID uuid.UUID, line *StockLine, action StockAction, quantity, previous int, ctx MovementContext) HistoryEntry {
	return HistoryEntry{
		ID:               uuid.New(),
		LedgerID:         ledgerID,
		Brand:            line.Brand,
		GasType:          line.GasType,
		Action:           action,
		Quantity:         quantity,
		PreviousQuantity: previous,
		NewQuantity:      line.AvailableQuantity,
		Reason:           ctx.Reason,
		PerformedBy:      ctx.PerformedBy,
		PerformedByRole:  ctx.PerformedByRole,
		OrderID:          ctx.OrderID,
		CreatedAt:        time.Now(),
	}
}
