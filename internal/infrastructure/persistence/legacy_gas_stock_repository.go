package persistence

import (
	"context"
	"errors"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLegacyGasStockRepository implements LegacyGasStockRepository using GORM
type GormLegacyGasStockRepository struct {
	db *gorm.DB
}

// NewGormLegacyGasStockRepository creates a new GormLegacyGasStockRepository
func NewGormLegacyGasStockRepository(db *gorm.DB) *GormLegacyGasStockRepository {
	return &GormLegacyGasStockRepository{db: db}
}

// FindByID finds a distribution center record by its ID
func (r *GormLegacyGasStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.LegacyGasStock, error) {
	var record stock.LegacyGasStock
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAll finds every distribution center record
func (r *GormLegacyGasStockRepository) FindAll(ctx context.Context) ([]*stock.LegacyGasStock, error) {
	var records []*stock.LegacyGasStock
	if err := r.db.WithContext(ctx).
		Order("center_name ASC, brand ASC, gas_type ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a distribution center record
func (r *GormLegacyGasStockRepository) Save(ctx context.Context, record *stock.LegacyGasStock) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete removes a distribution center record
func (r *GormLegacyGasStockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.LegacyGasStock{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLegacyGasStockRepository implements LegacyGasStockRepository
var _ stock.LegacyGasStockRepository = (*GormLegacyGasStockRepository)(nil)
