package stock

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

// StockManager is the single entry point for all stock mutations. It
// dispatches each operation to the backend the reference selects and folds
// every failure into a structured result so callers never handle raw errors.
type StockManager struct {
	ledgerRepo stock.StockLedgerRepository
	legacyRepo stock.LegacyGasStockRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewStockManager creates a new StockManager
func NewStockManager(ledgerRepo stock.StockLedgerRepository, legacyRepo stock.LegacyGasStockRepository, logger *zap.Logger) *StockManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockManager{
		ledgerRepo: ledgerRepo,
		legacyRepo: legacyRepo,
		logger:     logger,
	}
}

// SetEventPublisher sets the publisher for domain events raised by ledgers
func (m *StockManager) SetEventPublisher(publisher shared.EventPublisher) {
	m.publisher = publisher
}

func (m *StockManager) backendFor(ref StockRef) (stockBackend, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if ref.ShopID != nil {
		return m.ledgerBackendFor(*ref.ShopID), nil
	}
	return &legacyBackend{stockID: *ref.LegacyStockID, repo: m.legacyRepo}, nil
}

func (m *StockManager) ledgerBackendFor(shopID uuid.UUID) *ledgerBackend {
	return &ledgerBackend{shopID: shopID, repo: m.ledgerRepo, onSaved: m.publishEvents}
}

// ReserveStock holds stock for a paid order
func (m *StockManager) ReserveStock(ctx context.Context, ref StockRef, req StockRequest, orderRef string) *StockOperationResult {
	backend, err := m.backendFor(ref)
	if err != nil {
		return failedResult(err)
	}
	result, err := backend.Reserve(ctx, req, orderRef)
	if err != nil {
		m.logger.Warn("stock reservation failed",
			zap.String("ref", describeRef(ref)),
			zap.String("order", orderRef),
			zap.Error(err))
		return failedResult(err)
	}
	return result
}

// DeductStock finalizes stock for a confirmed order, consuming any existing
// reservation first.
func (m *StockManager) DeductStock(ctx context.Context, ref StockRef, req StockRequest, orderRef string) *StockOperationResult {
	backend, err := m.backendFor(ref)
	if err != nil {
		return failedResult(err)
	}
	result, err := backend.Deduct(ctx, req, orderRef)
	if err != nil {
		m.logger.Warn("stock deduction failed",
			zap.String("ref", describeRef(ref)),
			zap.String("order", orderRef),
			zap.Error(err))
		return failedResult(err)
	}
	return result
}

// RestoreStock puts stock back for a cancelled or returned order
func (m *StockManager) RestoreStock(ctx context.Context, ref StockRef, req StockRequest, orderRef, reason string) *StockOperationResult {
	if reason == "" {
		reason = "Order cancelled"
	}
	backend, err := m.backendFor(ref)
	if err != nil {
		return failedResult(err)
	}
	result, err := backend.Restore(ctx, req, orderRef, reason)
	if err != nil {
		m.logger.Warn("stock restore failed",
			zap.String("ref", describeRef(ref)),
			zap.String("order", orderRef),
			zap.Error(err))
		return failedResult(err)
	}
	return result
}

// CheckAvailability reports whether the referenced backend can satisfy the
// requested quantity, without mutating anything.
func (m *StockManager) CheckAvailability(ctx context.Context, ref StockRef, req StockRequest) *AvailabilityResult {
	backend, err := m.backendFor(ref)
	if err != nil {
		return failedAvailability(err)
	}
	result, err := backend.Check(ctx, req)
	if err != nil {
		return failedAvailability(err)
	}
	return result
}

// GetLedger loads a shop's full ledger for display
func (m *StockManager) GetLedger(ctx context.Context, shopID uuid.UUID) (*stock.StockLedger, error) {
	return m.ledgerRepo.FindByShopID(ctx, shopID)
}

// GetHistory returns the newest audit entries for a shop's ledger
func (m *StockManager) GetHistory(ctx context.Context, shopID uuid.UUID, limit int) ([]stock.HistoryEntry, error) {
	ledger, err := m.ledgerRepo.FindByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return m.ledgerRepo.FindHistory(ctx, ledger.ID, limit)
}

// ApplyStockAction performs a manual ledger mutation on behalf of an agent
func (m *StockManager) ApplyStockAction(ctx context.Context, shopID uuid.UUID, req ApplyActionRequest) (*stock.StockLedger, error) {
	if !req.Action.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid stock action: "+req.Action.String())
	}

	backend := m.ledgerBackendFor(shopID)
	var updated *stock.StockLedger
	_, err := backend.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		movement := stock.MovementContext{
			Reason:          req.Reason,
			PerformedBy:     req.Actor,
			PerformedByRole: req.Role,
		}
		if err := ledger.ApplyStockAction(req.Brand, req.GasType, req.Quantity, req.Action, movement); err != nil {
			return nil, err
		}
		updated = ledger
		return ledger.FindLine(req.Brand, req.GasType)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ScheduleArrival books the next replenishment for a shop's line
func (m *StockManager) ScheduleArrival(ctx context.Context, shopID uuid.UUID, req ScheduleArrivalRequest) (*stock.StockLedger, error) {
	backend := m.ledgerBackendFor(shopID)
	var updated *stock.StockLedger
	_, err := backend.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		if err := ledger.ScheduleArrival(req.Brand, req.GasType, req.ArrivalDate, req.ExpectedQuantity, req.ScheduledBy, req.Notes); err != nil {
			return nil, err
		}
		updated = ledger
		return ledger.FindLine(req.Brand, req.GasType)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelArrival withdraws a scheduled replenishment
func (m *StockManager) CancelArrival(ctx context.Context, shopID uuid.UUID, brand stock.GasBrand, gasType, cancelledBy string) (*stock.StockLedger, error) {
	backend := m.ledgerBackendFor(shopID)
	var updated *stock.StockLedger
	_, err := backend.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		if err := ledger.CancelArrival(brand, gasType, cancelledBy); err != nil {
			return nil, err
		}
		updated = ledger
		return ledger.FindLine(brand, gasType)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExecuteArrival credits a due arrival for one line. Used by the scheduler
// and by the manual trigger endpoint; returns whether the arrival fired.
func (m *StockManager) ExecuteArrival(ctx context.Context, shopID uuid.UUID, brand stock.GasBrand, gasType string) (bool, error) {
	backend := m.ledgerBackendFor(shopID)
	executed := false
	_, err := backend.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		fired, err := ledger.ExecuteArrival(brand, gasType)
		if err != nil {
			return nil, err
		}
		executed = fired
		return ledger.FindLine(brand, gasType)
	})
	if err != nil {
		return false, err
	}
	if executed {
		m.logger.Info("arrival executed",
			zap.String("shop_id", shopID.String()),
			zap.String("brand", brand.String()),
			zap.String("gas_type", gasType))
	}
	return executed, nil
}

// FindLedgersWithPendingArrivals lists the ledgers the scheduler must scan
func (m *StockManager) FindLedgersWithPendingArrivals(ctx context.Context) ([]*stock.StockLedger, error) {
	return m.ledgerRepo.FindWithPendingArrivals(ctx)
}

func (m *StockManager) publishEvents(ctx context.Context, ledger *stock.StockLedger) {
	if m.publisher == nil || ledger == nil {
		return
	}
	events := ledger.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = m.publisher.Publish(ctx, events...)
	ledger.ClearDomainEvents()
}
