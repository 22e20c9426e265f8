package persistence

import (
	"context"
	"errors"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// FindByID finds a stock ledger by its ID with lines preloaded
func (r *GormStockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockLedger, error) {
	var ledger stock.StockLedger
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&ledger, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	ledger.Recalculate()
	return &ledger, nil
}

// FindByShopID finds the ledger owned by a shop
func (r *GormStockLedgerRepository) FindByShopID(ctx context.Context, shopID uuid.UUID) (*stock.StockLedger, error) {
	var ledger stock.StockLedger
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&ledger, "shop_id = ?", shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	ledger.Recalculate()
	return &ledger, nil
}

// FindAll finds every shop ledger with lines preloaded
func (r *GormStockLedgerRepository) FindAll(ctx context.Context) ([]*stock.StockLedger, error) {
	var ledgers []*stock.StockLedger
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Order("created_at ASC").
		Find(&ledgers).Error; err != nil {
		return nil, err
	}
	for _, ledger := range ledgers {
		ledger.Recalculate()
	}
	return ledgers, nil
}

// FindWithPendingArrivals finds ledgers holding at least one scheduled
// arrival with automatic execution enabled
func (r *GormStockLedgerRepository) FindWithPendingArrivals(ctx context.Context) ([]*stock.StockLedger, error) {
	var ledgerIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&stock.StockLine{}).
		Distinct("ledger_id").
		Where("arrival_status = ? AND arrival_auto_update = ? AND arrival_date IS NOT NULL",
			stock.ArrivalStatusScheduled, true).
		Pluck("ledger_id", &ledgerIDs).Error; err != nil {
		return nil, err
	}
	if len(ledgerIDs) == 0 {
		return []*stock.StockLedger{}, nil
	}

	var ledgers []*stock.StockLedger
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id IN ?", ledgerIDs).
		Find(&ledgers).Error; err != nil {
		return nil, err
	}
	for _, ledger := range ledgers {
		ledger.Recalculate()
	}
	return ledgers, nil
}

// Save creates or updates a ledger together with its lines and appends any
// pending history entries
func (r *GormStockLedgerRepository) Save(ctx context.Context, ledger *stock.StockLedger) error {
	pending := ledger.TakePendingHistory()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "History").Save(ledger).Error; err != nil {
			return err
		}
		for i := range ledger.Lines {
			if err := tx.Save(&ledger.Lines[i]).Error; err != nil {
				return err
			}
		}
		if len(pending) > 0 {
			if err := tx.Create(&pending).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking. The version check runs against
// the version the ledger was loaded with; a zero row count means another
// transaction got there first.
func (r *GormStockLedgerRepository) SaveWithLock(ctx context.Context, ledger *stock.StockLedger) error {
	pending := ledger.TakePendingHistory()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(ledger).
			Where("id = ? AND version = ?", ledger.ID, ledger.Version).
			Updates(map[string]interface{}{
				"total_value":     ledger.Total,
				"last_updated_by": ledger.LastUpdatedBy,
				"updated_by_role": ledger.UpdatedByRole,
				"notes":           ledger.Notes,
				"version":         ledger.Version + 1,
				"updated_at":      ledger.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range ledger.Lines {
			if err := tx.Save(&ledger.Lines[i]).Error; err != nil {
				return err
			}
		}
		if len(pending) > 0 {
			if err := tx.Create(&pending).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ledger.Version++
	return nil
}

// Delete removes a ledger and its lines
func (r *GormStockLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&stock.StockLine{}, "ledger_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&stock.StockLedger{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindHistory returns the newest audit entries for a ledger
func (r *GormStockLedgerRepository) FindHistory(ctx context.Context, ledgerID uuid.UUID, limit int) ([]stock.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []stock.HistoryEntry
	if err := r.db.WithContext(ctx).
		Where("ledger_id = ?", ledgerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormStockLedgerRepository implements StockLedgerRepository
var _ stock.StockLedgerRepository = (*GormStockLedgerRepository)(nil)
