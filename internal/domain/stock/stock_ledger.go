package stock

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gasflow/backend/internal/domain/shared"
)

// StockLedger is the aggregate root holding a shop's cylinder inventory.
// There is exactly one ledger per shop. All quantity changes go through the
// ledger so that every movement leaves a history entry and derived values
// stay consistent.
type StockLedger struct {
	shared.BaseAggregateRoot
	ShopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"shop_id"`

	Lines   []StockLine     `gorm:"foreignKey:LedgerID" json:"lines"`
	History []HistoryEntry  `gorm:"foreignKey:LedgerID" json:"history,omitempty"`
	Alerts  []Alert         `gorm:"-" json:"alerts"`
	Total   decimal.Decimal `gorm:"column:total_value;type:decimal(14,2);not null;default:0" json:"total_value"`

	LastUpdatedBy string `gorm:"size:255" json:"last_updated_by,omitempty"`
	UpdatedByRole string `gorm:"size:50" json:"updated_by_role,omitempty"`
	Notes         string `gorm:"size:1000" json:"notes,omitempty"`

	pendingHistory []HistoryEntry `gorm:"-"`
}

// TableName returns the table name for StockLedger
func (StockLedger) TableName() string {
	return "stock_ledgers"
}

var defaultUnitPrices = map[GasBrand]map[GasType]decimal.Decimal{
	BrandLaugfs: {
		GasTypeSmall:  decimal.NewFromInt(800),
		GasTypeMedium: decimal.NewFromInt(1700),
		GasTypeLarge:  decimal.NewFromInt(4200),
	},
	BrandLitro: {
		GasTypeSmall:  decimal.NewFromInt(780),
		GasTypeMedium: decimal.NewFromInt(1650),
		GasTypeLarge:  decimal.NewFromInt(4100),
	},
}

// NewStockLedger creates a ledger for a shop seeded with the default line
// set: every brand and size combination at zero quantity.
func NewStockLedger(shopID uuid.UUID) (*StockLedger, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "shop ID is required")
	}

	ledger := &StockLedger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShopID:            shopID,
		Lines:             make([]StockLine, 0, 6),
		Alerts:            make([]Alert, 0),
	}

	for _, brand := range []GasBrand{BrandLaugfs, BrandLitro} {
		for _, gasType := range []GasType{GasTypeSmall, GasTypeMedium, GasTypeLarge} {
			line, err := NewStockLine(ledger.ID, brand, gasType, defaultUnitPrices[brand][gasType])
			if err != nil {
				return nil, err
			}
			ledger.Lines = append(ledger.Lines, *line)
		}
	}
	ledger.refreshDerived()

	return ledger, nil
}

// FindLine locates a stock line with flexible matching: exact brand and type
// first, then the canonical form of the requested type, then a
// case-insensitive comparison. The not-found error lists the types the shop
// actually carries for that brand.
func (s *StockLedger) FindLine(brand GasBrand, gasType string) (*StockLine, error) {
	for i := range s.Lines {
		if s.Lines[i].Brand == brand && s.Lines[i].GasType.String() == gasType {
			return &s.Lines[i], nil
		}
	}

	if canonical, ok := CanonicalGasType(gasType); ok {
		for i := range s.Lines {
			if s.Lines[i].Brand == brand && s.Lines[i].GasType == canonical {
				return &s.Lines[i], nil
			}
		}
	}

	lowerBrand := strings.ToLower(brand.String())
	lowerType := strings.ToLower(gasType)
	for i := range s.Lines {
		if strings.ToLower(s.Lines[i].Brand.String()) == lowerBrand &&
			strings.ToLower(s.Lines[i].GasType.String()) == lowerType {
			return &s.Lines[i], nil
		}
	}

	return nil, shared.NewDomainError("NOT_FOUND",
		fmt.Sprintf("gas stock not found for %s %s, available types: %s", brand, gasType, s.availableTypesFor(brand)))
}

func (s *StockLedger) availableTypesFor(brand GasBrand) string {
	types := make([]string, 0, 3)
	for i := range s.Lines {
		if s.Lines[i].Brand == brand {
			types = append(types, s.Lines[i].GasType.String())
		}
	}
	if len(types) == 0 {
		return "none"
	}
	return strings.Join(types, ", ")
}

// AddLine registers a new brand and size combination on the ledger
func (s *StockLedger) AddLine(brand GasBrand, gasType GasType, unitPrice decimal.Decimal) (*StockLine, error) {
	for i := range s.Lines {
		if s.Lines[i].Brand == brand && s.Lines[i].GasType == gasType {
			return nil, shared.NewDomainError("ALREADY_EXISTS",
				fmt.Sprintf("stock line already exists for %s %s", brand, gasType))
		}
	}
	line, err := NewStockLine(s.ID, brand, gasType, unitPrice)
	if err != nil {
		return nil, err
	}
	s.Lines = append(s.Lines, *line)
	s.refreshDerived()
	return &s.Lines[len(s.Lines)-1], nil
}

// ApplyStockAction is the single entry point for manual quantity mutations.
// Failed actions leave the ledger completely untouched.
func (s *StockLedger) ApplyStockAction(brand GasBrand, gasType string, quantity int, action StockAction, ctx MovementContext) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}

	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}
	previous := line.AvailableQuantity

	switch action {
	case ActionRestock:
		line.AvailableQuantity += quantity
		now := time.Now()
		line.LastRestockDate = &now
	case ActionSale:
		if line.AvailableQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient stock, available: %d, requested: %d", line.AvailableQuantity, quantity))
		}
		line.AvailableQuantity -= quantity
	case ActionReturn:
		line.AvailableQuantity += quantity
	case ActionDamage:
		if line.AvailableQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				"cannot report damage for more than available stock")
		}
		line.AvailableQuantity -= quantity
		line.DamagedCylinders += quantity
	case ActionAdjustment:
		line.AvailableQuantity = quantity
	default:
		return shared.NewDomainError("INVALID_INPUT", "invalid stock action: "+action.String())
	}

	s.appendHistory(newHistoryEntry(s.ID, line, action, quantity, previous, ctx))
	s.touch(ctx)
	s.AddDomainEvent(NewStockMovementRecordedEvent(s.ID, s.ShopID, line.Brand, line.GasType, action, quantity, line.AvailableQuantity))

	return nil
}

// Reserve moves cylinders from the available pool to the reserved pool
func (s *StockLedger) Reserve(brand GasBrand, gasType string, quantity int, orderRef string) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}
	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}
	if line.AvailableQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("insufficient stock, available: %d, requested: %d", line.AvailableQuantity, quantity))
	}

	previous := line.AvailableQuantity
	line.AvailableQuantity -= quantity
	line.ReservedQuantity += quantity

	ctx := MovementContext{Reason: "stock reserved for order payment", OrderID: orderRef}
	s.appendHistory(newHistoryEntry(s.ID, line, ActionReserve, quantity, previous, ctx))
	s.touch(ctx)
	s.AddDomainEvent(NewStockReservedEvent(s.ID, s.ShopID, line.Brand, line.GasType, quantity, orderRef))

	return nil
}

// Release returns reserved cylinders to the available pool. The reserved
// pool is clamped at zero so a release can never be larger than what was
// actually held.
func (s *StockLedger) Release(brand GasBrand, gasType string, quantity int, orderRef string) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}
	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}

	previous := line.AvailableQuantity
	released := quantity
	if released > line.ReservedQuantity {
		released = line.ReservedQuantity
	}
	line.ReservedQuantity -= released
	line.AvailableQuantity += released

	ctx := MovementContext{Reason: "reservation released", OrderID: orderRef}
	s.appendHistory(newHistoryEntry(s.ID, line, ActionRelease, quantity, previous, ctx))
	s.touch(ctx)

	return nil
}

// DeductForOrder finalizes stock for a confirmed order. Reserved cylinders
// are consumed first when the full quantity was reserved up front; otherwise
// the deduction comes straight from the available pool.
func (s *StockLedger) DeductForOrder(brand GasBrand, gasType string, quantity int, orderRef string) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}
	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}

	previous := line.AvailableQuantity
	if line.ReservedQuantity >= quantity {
		line.ReservedQuantity -= quantity
	} else {
		if line.AvailableQuantity < quantity {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient stock, available: %d, requested: %d", line.AvailableQuantity, quantity))
		}
		line.AvailableQuantity -= quantity
	}

	ctx := MovementContext{Reason: "stock deducted for confirmed order", OrderID: orderRef}
	s.appendHistory(newHistoryEntry(s.ID, line, ActionSale, quantity, previous, ctx))
	s.touch(ctx)
	s.AddDomainEvent(NewStockMovementRecordedEvent(s.ID, s.ShopID, line.Brand, line.GasType, ActionSale, quantity, line.AvailableQuantity))

	return nil
}

// RestoreForOrder puts cylinders back after a cancellation or return
func (s *StockLedger) RestoreForOrder(brand GasBrand, gasType string, quantity int, orderRef, reason string) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}
	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}

	previous := line.AvailableQuantity
	line.AvailableQuantity += quantity
	if line.ReservedQuantity >= quantity {
		line.ReservedQuantity -= quantity
	}

	action := ActionAdjustment
	if strings.Contains(strings.ToLower(reason), "return") {
		action = ActionReturn
	}
	ctx := MovementContext{Reason: reason, OrderID: orderRef}
	s.appendHistory(newHistoryEntry(s.ID, line, action, quantity, previous, ctx))
	s.touch(ctx)
	s.AddDomainEvent(NewStockMovementRecordedEvent(s.ID, s.ShopID, line.Brand, line.GasType, action, quantity, line.AvailableQuantity))

	return nil
}

// ScheduleArrival records the next expected replenishment for a line,
// overwriting any previously scheduled arrival.
func (s *StockLedger) ScheduleArrival(brand GasBrand, gasType string, arrivalDate time.Time, expectedQuantity int, scheduledBy, notes string) error {
	if expectedQuantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "expected quantity must be positive")
	}

	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}

	now := time.Now()
	line.NextArrival = NextArrival{
		ExpectedQuantity:  expectedQuantity,
		ArrivalDate:       &arrivalDate,
		Status:            ArrivalStatusScheduled,
		AutoUpdateEnabled: true,
		ScheduledBy:       scheduledBy,
		ScheduledAt:       &now,
		Notes:             notes,
	}
	s.touch(MovementContext{PerformedBy: scheduledBy})
	s.AddDomainEvent(NewArrivalScheduledEvent(s.ID, s.ShopID, line.Brand, line.GasType, arrivalDate, expectedQuantity))

	return nil
}

// CancelArrival withdraws a scheduled arrival. Cancelling a line without a
// pending arrival is a no-op.
func (s *StockLedger) CancelArrival(brand GasBrand, gasType string, cancelledBy string) error {
	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return err
	}

	if line.NextArrival.Status != ArrivalStatusScheduled {
		return nil
	}

	line.NextArrival.Status = ArrivalStatusCancelled
	line.NextArrival.AutoUpdateEnabled = false

	ctx := MovementContext{Reason: "next arrival cancelled", PerformedBy: cancelledBy, PerformedByRole: "SalesAgent"}
	s.appendHistory(newHistoryEntry(s.ID, line, ActionAdjustment, 0, line.AvailableQuantity, ctx))
	s.touch(ctx)

	return nil
}

// ExecuteArrival credits a due arrival into the available pool. It fires at
// most once per scheduled arrival: any state other than a due, auto-update
// enabled, scheduled arrival returns false without touching the ledger.
func (s *StockLedger) ExecuteArrival(brand GasBrand, gasType string) (bool, error) {
	line, err := s.FindLine(brand, gasType)
	if err != nil {
		return false, err
	}

	arrival := &line.NextArrival
	if arrival.Status != ArrivalStatusScheduled {
		return false, nil
	}
	if !arrival.AutoUpdateEnabled || !arrival.IsDue(time.Now()) {
		return false, nil
	}

	previous := line.AvailableQuantity
	line.AvailableQuantity += arrival.ExpectedQuantity
	now := time.Now()
	line.LastRestockDate = &now
	arrival.Status = ArrivalStatusCompleted
	arrival.AutoUpdateEnabled = false

	ctx := MovementContext{
		Reason:          "automated arrival restock: " + arrival.Notes,
		PerformedBy:     arrival.ScheduledBy,
		PerformedByRole: "SalesAgent",
	}
	s.appendHistory(newHistoryEntry(s.ID, line, ActionRestock, arrival.ExpectedQuantity, previous, ctx))
	s.touch(ctx)
	s.AddDomainEvent(NewArrivalExecutedEvent(s.ID, s.ShopID, line.Brand, line.GasType, arrival.ExpectedQuantity))

	return true, nil
}

// PendingArrivals lists the lines that still hold a scheduled arrival
func (s *StockLedger) PendingArrivals() []*StockLine {
	var pending []*StockLine
	for i := range s.Lines {
		if s.Lines[i].NextArrival.IsPending() {
			pending = append(pending, &s.Lines[i])
		}
	}
	return pending
}

// TakePendingHistory returns history entries appended since the aggregate
// was loaded and resets the pending set. Used by the repository to persist
// only new audit rows.
func (s *StockLedger) TakePendingHistory() []HistoryEntry {
	pending := s.pendingHistory
	s.pendingHistory = nil
	return pending
}

// Recalculate recomputes the derived total and alerts from the current
// lines. Repositories call this after loading, since neither is stored.
func (s *StockLedger) Recalculate() {
	s.refreshDerived()
}

func (s *StockLedger) appendHistory(entry HistoryEntry) {
	s.History = append(s.History, entry)
	s.pendingHistory = append(s.pendingHistory, entry)
}

func (s *StockLedger) touch(ctx MovementContext) {
	if ctx.PerformedBy != "" {
		s.LastUpdatedBy = ctx.PerformedBy
	} else if ctx.OrderID != "" {
		s.LastUpdatedBy = "order:" + ctx.OrderID
	}
	if ctx.PerformedByRole != "" {
		s.UpdatedByRole = ctx.PerformedByRole
	}
	s.UpdatedAt = time.Now()
	s.refreshDerived()
}

func (s *StockLedger) refreshDerived() {
	total := decimal.Zero
	for i := range s.Lines {
		total = total.Add(s.Lines[i].LineValue())
	}
	s.Total = total
	s.Alerts = computeAlerts(s.Lines)
}
