package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPriceRepository implements PriceRepository using GORM
type GormPriceRepository struct {
	db *gorm.DB
}

// NewGormPriceRepository creates a new GormPriceRepository
func NewGormPriceRepository(db *gorm.DB) *GormPriceRepository {
	return &GormPriceRepository{db: db}
}

// FindByID finds a price by its ID with regions and discounts preloaded
func (r *GormPriceRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Price, error) {
	var price pricing.Price
	if err := r.db.WithContext(ctx).
		Preload("RegionalPricing").
		Preload("BulkDiscounts").
		First(&price, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// FindEffective finds the active price for a brand and weight label whose
// effectivity window covers now. The newest effective-from wins when windows
// overlap.
func (r *GormPriceRepository) FindEffective(ctx context.Context, brand stock.GasBrand, gasType string) (*pricing.Price, error) {
	now := time.Now()
	var price pricing.Price
	if err := r.db.WithContext(ctx).
		Preload("RegionalPricing").
		Preload("BulkDiscounts").
		Where("brand = ? AND gas_type = ? AND is_active = ?", brand, gasType, true).
		Where("effective_from <= ? AND (effective_until IS NULL OR effective_until >= ?)", now, now).
		Order("effective_from DESC").
		First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// FindAll finds every published price
func (r *GormPriceRepository) FindAll(ctx context.Context) ([]*pricing.Price, error) {
	var prices []*pricing.Price
	if err := r.db.WithContext(ctx).
		Preload("RegionalPricing").
		Preload("BulkDiscounts").
		Order("brand ASC, gas_type ASC").
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// Save creates or updates a price together with its regions, discounts and
// any new history entries
func (r *GormPriceRepository) Save(ctx context.Context, price *pricing.Price) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("RegionalPricing", "BulkDiscounts", "History").Save(price).Error; err != nil {
			return err
		}
		for i := range price.RegionalPricing {
			if err := tx.Save(&price.RegionalPricing[i]).Error; err != nil {
				return err
			}
		}
		for i := range price.BulkDiscounts {
			if err := tx.Save(&price.BulkDiscounts[i]).Error; err != nil {
				return err
			}
		}
		for i := range price.History {
			if err := tx.Save(&price.History[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CurrentPrice resolves the final per-unit quote for a brand, weight label,
// region and quantity, satisfying the lookup the order flow depends on
func (r *GormPriceRepository) CurrentPrice(ctx context.Context, brand stock.GasBrand, gasType, region string, quantity int) (*pricing.Quote, error) {
	price, err := r.FindEffective(ctx, brand, gasType)
	if err != nil {
		return nil, err
	}
	quote := price.QuoteFor(region, quantity)
	return &quote, nil
}

// Ensure GormPriceRepository implements both ports
var (
	_ pricing.PriceRepository = (*GormPriceRepository)(nil)
	_ pricing.PriceLookup     = (*GormPriceRepository)(nil)
)
