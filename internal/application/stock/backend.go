package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

// maxSaveAttempts bounds the optimistic-lock retry loop. Each attempt
// re-reads the aggregate so the mutation is applied to fresh state.
const maxSaveAttempts = 3

// stockBackend abstracts where an order's cylinders come from: a shop
// ledger with reservation pools, or a legacy distribution-center counter.
type stockBackend interface {
	Reserve(ctx context.Context, req StockRequest, orderRef string) (*StockOperationResult, error)
	Deduct(ctx context.Context, req StockRequest, orderRef string) (*StockOperationResult, error)
	Restore(ctx context.Context, req StockRequest, orderRef, reason string) (*StockOperationResult, error)
	Check(ctx context.Context, req StockRequest) (*AvailabilityResult, error)
}

// ledgerBackend serves shop ledgers with reserve/deduct semantics and
// optimistic locking.
type ledgerBackend struct {
	shopID  uuid.UUID
	repo    stock.StockLedgerRepository
	onSaved func(context.Context, *stock.StockLedger)
}

// mutateWithRetry runs a read-modify-write cycle against the shop's ledger,
// retrying the whole cycle when another writer won the version race.
func (b *ledgerBackend) mutateWithRetry(ctx context.Context, mutate func(*stock.StockLedger) (*stock.StockLine, error)) (*stock.StockLine, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		ledger, err := b.repo.FindByShopID(ctx, b.shopID)
		if err != nil {
			return nil, err
		}

		line, err := mutate(ledger)
		if err != nil {
			return nil, err
		}

		if err := b.repo.SaveWithLock(ctx, ledger); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		if b.onSaved != nil {
			b.onSaved(ctx, ledger)
		}
		return line, nil
	}
	return nil, lastErr
}

func (b *ledgerBackend) Reserve(ctx context.Context, req StockRequest, orderRef string) (*StockOperationResult, error) {
	line, err := b.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		if err := ledger.Reserve(req.Brand, req.GasType, req.Quantity, orderRef); err != nil {
			return nil, err
		}
		return ledger.FindLine(req.Brand, req.GasType)
	})
	if err != nil {
		return nil, err
	}
	return &StockOperationResult{
		Success:           true,
		Message:           "Stock reserved successfully",
		AvailableQuantity: line.AvailableQuantity,
		ReservedQuantity:  line.ReservedQuantity,
	}, nil
}

func (b *ledgerBackend) Deduct(ctx context.Context, req StockRequest, orderRef string) (*StockOperationResult, error) {
	line, err := b.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		if err := ledger.DeductForOrder(req.Brand, req.GasType, req.Quantity, orderRef); err != nil {
			return nil, err
		}
		return ledger.FindLine(req.Brand, req.GasType)
	})
	if err != nil {
		return nil, err
	}
	return &StockOperationResult{
		Success:           true,
		Message:           "Stock deducted successfully",
		AvailableQuantity: line.AvailableQuantity,
		ReservedQuantity:  line.ReservedQuantity,
	}, nil
}

func (b *ledgerBackend) Restore(ctx context.Context, req StockRequest, orderRef, reason string) (*StockOperationResult, error) {
	line, err := b.mutateWithRetry(ctx, func(ledger *stock.StockLedger) (*stock.StockLine, error) {
		if err := ledger.RestoreForOrder(req.Brand, req.GasType, req.Quantity, orderRef, reason); err != nil {
			return nil, err
		}
		return ledger.FindLine(req.Brand, req.GasType)
	})
	if err != nil {
		return nil, err
	}
	return &StockOperationResult{
		Success:           true,
		Message:           "Stock restored successfully",
		AvailableQuantity: line.AvailableQuantity,
		ReservedQuantity:  line.ReservedQuantity,
	}, nil
}

func (b *ledgerBackend) Check(ctx context.Context, req StockRequest) (*AvailabilityResult, error) {
	ledger, err := b.repo.FindByShopID(ctx, b.shopID)
	if err != nil {
		return nil, err
	}
	line, err := ledger.FindLine(req.Brand, req.GasType)
	if err != nil {
		return nil, err
	}

	shortage := req.Quantity - line.AvailableQuantity
	if shortage < 0 {
		shortage = 0
	}
	return &AvailabilityResult{
		Success:           true,
		Available:         line.AvailableQuantity >= req.Quantity,
		AvailableQuantity: line.AvailableQuantity,
		RequestedQuantity: req.Quantity,
		Shortage:          shortage,
	}, nil
}

// legacyBackend serves the pre-ledger distribution-center records. There is
// no reservation pool: reserving deducts immediately and a later deduct is
// a no-op.
type legacyBackend struct {
	stockID uuid.UUID
	repo    stock.LegacyGasStockRepository
}

func (b *legacyBackend) Reserve(ctx context.Context, req StockRequest, orderRef string) (*StockOperationResult, error) {
	record, err := b.repo.FindByID(ctx, b.stockID)
	if err != nil {
		return nil, err
	}
	if err := record.Claim(req.Quantity); err != nil {
		return nil, err
	}
	if err := b.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return &StockOperationResult{
		Success:           true,
		Message:           "Stock reserved (legacy system)",
		AvailableQuantity: record.AvailableQuantity,
	}, nil
}

func (b *legacyBackend) Deduct(ctx context.Context, req StockRequest, orderRef string) (*StockOperationResult, error) {
	// Legacy stock is deducted at reservation time.
	return &StockOperationResult{
		Success: true,
		Message: "Stock already handled (legacy system)",
	}, nil
}

func (b *legacyBackend) Restore(ctx context.Context, req StockRequest, orderRef, reason string) (*StockOperationResult, error) {
	record, err := b.repo.FindByID(ctx, b.stockID)
	if err != nil {
		return nil, err
	}
	if err := record.Restore(req.Quantity); err != nil {
		return nil, err
	}
	if err := b.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return &StockOperationResult{
		Success:           true,
		Message:           "Stock restored (legacy system)",
		AvailableQuantity: record.AvailableQuantity,
	}, nil
}

func (b *legacyBackend) Check(ctx context.Context, req StockRequest) (*AvailabilityResult, error) {
	record, err := b.repo.FindByID(ctx, b.stockID)
	if err != nil {
		return nil, err
	}

	shortage := req.Quantity - record.AvailableQuantity
	if shortage < 0 {
		shortage = 0
	}
	return &AvailabilityResult{
		Success:           true,
		Available:         record.HasStock(req.Quantity),
		AvailableQuantity: record.AvailableQuantity,
		RequestedQuantity: req.Quantity,
		Shortage:          shortage,
	}, nil
}

func failedResult(err error) *StockOperationResult {
	return &StockOperationResult{Success: false, Message: err.Error()}
}

func failedAvailability(err error) *AvailabilityResult {
	return &AvailabilityResult{Success: false, Message: err.Error()}
}

func describeRef(ref StockRef) string {
	if ref.ShopID != nil {
		return fmt.Sprintf("shop %s", ref.ShopID)
	}
	if ref.LegacyStockID != nil {
		return fmt.Sprintf("legacy stock %s", ref.LegacyStockID)
	}
	return "unreferenced stock"
}
