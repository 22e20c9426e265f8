package stock

import (
	"fmt"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
)

// LegacyGasStock is a distribution-center stock record from before per-shop
// ledgers existed. It tracks a single counter with no reservation pool, so
// claiming stock deducts immediately and restoring adds it straight back.
type LegacyGasStock struct {
	shared.BaseAggregateRoot
	CenterName        string     `gorm:"size:255;not null" json:"center_name"`
	Brand             GasBrand   `gorm:"size:50;not null" json:"brand"`
	GasType           GasType    `gorm:"size:20;not null" json:"gas_type"`
	AvailableQuantity int        `gorm:"not null;default:0" json:"available_quantity"`
	NextArrivalDate   *time.Time `json:"next_arrival_date,omitempty"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
}

// TableName returns the table name for LegacyGasStock
func (LegacyGasStock) TableName() string {
	return "legacy_gas_stocks"
}

// Claim deducts stock immediately, there is no reservation step in the
// legacy model.
func (g *LegacyGasStock) Claim(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}
	if g.AvailableQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("insufficient stock, available: %d, requested: %d", g.AvailableQuantity, quantity))
	}
	g.AvailableQuantity -= quantity
	g.UpdatedAt = time.Now()
	return nil
}

// Restore adds stock back after a cancellation or return
func (g *LegacyGasStock) Restore(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}
	g.AvailableQuantity += quantity
	g.UpdatedAt = time.Now()
	return nil
}

// HasStock reports whether the record can satisfy the requested quantity
func (g *LegacyGasStock) HasStock(quantity int) bool {
	return g.AvailableQuantity >= quantity
}
