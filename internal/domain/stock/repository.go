package stock

import (
	"context"

	"github.com/google/uuid"
)

// StockLedgerRepository persists shop ledgers
type StockLedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockLedger, error)
	FindByShopID(ctx context.Context, shopID uuid.UUID) (*StockLedger, error)
	FindAll(ctx context.Context) ([]*StockLedger, error)
	// FindWithPendingArrivals returns the ledgers that hold at least one
	// scheduled arrival, with lines preloaded.
	FindWithPendingArrivals(ctx context.Context) ([]*StockLedger, error)
	Save(ctx context.Context, ledger *StockLedger) error
	// SaveWithLock persists the ledger only when its version still matches
	// the loaded one, returning ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, ledger *StockLedger) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindHistory returns the newest audit entries for a ledger.
	FindHistory(ctx context.Context, ledgerID uuid.UUID, limit int) ([]HistoryEntry, error)
}

// LegacyGasStockRepository persists pre-ledger distribution center records
type LegacyGasStockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LegacyGasStock, error)
	FindAll(ctx context.Context) ([]*LegacyGasStock, error)
	Save(ctx context.Context, stock *LegacyGasStock) error
	Delete(ctx context.Context, id uuid.UUID) error
}
