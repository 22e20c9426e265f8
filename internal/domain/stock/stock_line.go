package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gasflow/backend/internal/domain/shared"
)

// ArrivalStatus tracks the lifecycle of a scheduled replenishment.
type ArrivalStatus string

const (
	ArrivalStatusScheduled ArrivalStatus = "scheduled"
	ArrivalStatusCompleted ArrivalStatus = "completed"
	ArrivalStatusCancelled ArrivalStatus = "cancelled"
)

// NextArrival is the single pending replenishment slot on a stock line.
// A line holds at most one; scheduling a new one overwrites the previous.
type NextArrival struct {
	ExpectedQuantity  int           `gorm:"column:arrival_expected_quantity;not null;default:0" json:"expected_quantity"`
	ArrivalDate       *time.Time    `gorm:"column:arrival_date" json:"arrival_date"`
	Status            ArrivalStatus `gorm:"column:arrival_status;size:20" json:"status"`
	AutoUpdateEnabled bool          `gorm:"column:arrival_auto_update;not null;default:false" json:"auto_update_enabled"`
	ScheduledBy       string        `gorm:"column:arrival_scheduled_by;size:255" json:"scheduled_by,omitempty"`
	ScheduledAt       *time.Time    `gorm:"column:arrival_scheduled_at" json:"scheduled_at,omitempty"`
	Notes             string        `gorm:"column:arrival_notes;size:500" json:"notes,omitempty"`
}

// IsPending reports whether the slot holds a scheduled, not yet executed arrival
func (a NextArrival) IsPending() bool {
	return a.Status == ArrivalStatusScheduled && a.ArrivalDate != nil
}

// IsDue reports whether a pending arrival has reached its arrival date
func (a NextArrival) IsDue(now time.Time) bool {
	return a.IsPending() && !now.Before(*a.ArrivalDate)
}

// StockLine is one brand and size combination tracked by a shop's ledger.
// Quantities are whole cylinders; money amounts use decimal arithmetic.
type StockLine struct {
	shared.BaseEntity
	LedgerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_stock_lines_ledger_brand_type,priority:1" json:"ledger_id"`
	Brand    GasBrand  `gorm:"size:50;not null;uniqueIndex:uk_stock_lines_ledger_brand_type,priority:2" json:"brand"`
	GasType  GasType   `gorm:"size:20;not null;uniqueIndex:uk_stock_lines_ledger_brand_type,priority:3" json:"gas_type"`
	GasSize  string    `gorm:"size:20;not null" json:"gas_size"`

	AvailableQuantity int `gorm:"not null;default:0" json:"available_quantity"`
	ReservedQuantity  int `gorm:"not null;default:0" json:"reserved_quantity"`
	EmptyCylinders    int `gorm:"not null;default:0" json:"empty_cylinders"`
	DamagedCylinders  int `gorm:"not null;default:0" json:"damaged_cylinders"`

	MinStockLevel int `gorm:"not null;default:10" json:"min_stock_level"`
	MaxStockLevel int `gorm:"not null;default:100" json:"max_stock_level"`

	UnitPrice    decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	SpecialPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"special_price,omitempty"`

	SupplierName    string     `gorm:"size:255" json:"supplier_name,omitempty"`
	SupplierContact string     `gorm:"size:100" json:"supplier_contact,omitempty"`
	LastRestockDate *time.Time `json:"last_restock_date,omitempty"`
	IsAvailable     bool       `gorm:"not null;default:true" json:"is_available"`

	NextArrival NextArrival `gorm:"embedded" json:"next_arrival"`
}

// TableName returns the table name for StockLine
func (StockLine) TableName() string {
	return "stock_lines"
}

// TotalQuantity is the full cylinder count across all states
func (l *StockLine) TotalQuantity() int {
	return l.AvailableQuantity + l.ReservedQuantity + l.EmptyCylinders + l.DamagedCylinders
}

// SellingPrice returns the special price when set, otherwise the unit price
func (l *StockLine) SellingPrice() decimal.Decimal {
	if l.SpecialPrice != nil {
		return *l.SpecialPrice
	}
	return l.UnitPrice
}

// LineValue is the monetary value of sellable stock on this line
func (l *StockLine) LineValue() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.AvailableQuantity)))
}

// IsLowStock reports whether available stock has fallen below the minimum level
func (l *StockLine) IsLowStock() bool {
	return l.AvailableQuantity < l.MinStockLevel
}

// IsOutOfStock reports whether the line has no sellable cylinders
func (l *StockLine) IsOutOfStock() bool {
	return l.AvailableQuantity == 0
}

// NewStockLine creates a stock line for a brand and canonical gas type
func NewStockLine(ledgerID uuid.UUID, brand GasBrand, gasType GasType, unitPrice decimal.Decimal) (*StockLine, error) {
	if !brand.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid gas brand: "+brand.String())
	}
	if !gasType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid gas type: "+gasType.String())
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unit price cannot be negative")
	}
	return &StockLine{
		BaseEntity:    shared.NewBaseEntity(),
		LedgerID:      ledgerID,
		Brand:         brand,
		GasType:       gasType,
		GasSize:       gasType.WeightLabel(),
		MinStockLevel: 10,
		MaxStockLevel: 100,
		UnitPrice:     unitPrice,
		IsAvailable:   true,
	}, nil
}
