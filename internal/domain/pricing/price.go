package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

// PriceType classifies why a price is in effect.
type PriceType string

const (
	PriceTypeStandard    PriceType = "Standard"
	PriceTypePromotional PriceType = "Promotional"
	PriceTypeEmergency   PriceType = "Emergency"
	PriceTypeBulk        PriceType = "Bulk"
)

// RegionalPrice adjusts the current price for one delivery region.
type RegionalPrice struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PriceID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"price_id"`
	Region          string          `gorm:"size:100;not null" json:"region"`
	PriceMultiplier decimal.Decimal `gorm:"type:decimal(6,3);not null;default:1" json:"price_multiplier"`
	DeliveryCharge  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"delivery_charge"`
}

// TableName returns the table name for RegionalPrice
func (RegionalPrice) TableName() string {
	return "price_regions"
}

// BulkDiscount grants a percentage off above a quantity threshold.
type BulkDiscount struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PriceID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"price_id"`
	MinQuantity        int             `gorm:"not null" json:"min_quantity"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percentage"`
}

// TableName returns the table name for BulkDiscount
func (BulkDiscount) TableName() string {
	return "price_bulk_discounts"
}

// PriceChange is one append-only record of a price update.
type PriceChange struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PriceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"price_id"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	EffectiveDate time.Time       `gorm:"not null" json:"effective_date"`
	Reason        string          `gorm:"size:255" json:"reason,omitempty"`
	UpdatedBy     string          `gorm:"size:255" json:"updated_by,omitempty"`
}

// TableName returns the table name for PriceChange
func (PriceChange) TableName() string {
	return "price_history"
}

// Price is the published price for one brand and cylinder size, with
// regional multipliers, bulk discounts and an effectivity window.
type Price struct {
	shared.BaseAggregateRoot
	Brand   stock.GasBrand `gorm:"size:50;not null;index:idx_prices_brand_type,priority:1" json:"brand"`
	GasType string         `gorm:"size:20;not null;index:idx_prices_brand_type,priority:2" json:"gas_type"`

	BasePrice          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	CurrentPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"current_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"`

	RegionalPricing []RegionalPrice `gorm:"foreignKey:PriceID" json:"regional_pricing,omitempty"`
	BulkDiscounts   []BulkDiscount  `gorm:"foreignKey:PriceID" json:"bulk_discounts,omitempty"`
	History         []PriceChange   `gorm:"foreignKey:PriceID" json:"history,omitempty"`

	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	EffectiveFrom  time.Time  `gorm:"not null" json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`
	PriceType      PriceType  `gorm:"size:20;not null;default:'Standard'" json:"price_type"`
	LastUpdatedBy  string     `gorm:"size:255" json:"last_updated_by,omitempty"`
}

// TableName returns the table name for Price
func (Price) TableName() string {
	return "prices"
}

// IsEffective reports whether the price applies at the given instant
func (p *Price) IsEffective(now time.Time) bool {
	if !p.IsActive || now.Before(p.EffectiveFrom) {
		return false
	}
	if p.EffectiveUntil != nil && now.After(*p.EffectiveUntil) {
		return false
	}
	return true
}

// UpdateCurrentPrice changes the published price, recording the change
func (p *Price) UpdateCurrentPrice(newPrice decimal.Decimal, reason, updatedBy string) error {
	if newPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "price cannot be negative")
	}
	p.CurrentPrice = newPrice
	p.LastUpdatedBy = updatedBy
	p.UpdatedAt = time.Now()
	p.History = append(p.History, PriceChange{
		ID:            uuid.New(),
		PriceID:       p.ID,
		Price:         newPrice,
		EffectiveDate: time.Now(),
		Reason:        reason,
		UpdatedBy:     updatedBy,
	})
	return nil
}

// Quote is a resolved per-unit price for a specific region and quantity.
type Quote struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	PriceType       PriceType       `json:"price_type"`
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// QuoteFor resolves the per-unit price: regional multiplier and delivery
// charge first, then the best applicable bulk discount, then the general
// discount, rounded to cents.
func (p *Price) QuoteFor(region string, quantity int) Quote {
	final := p.CurrentPrice

	if region != "" {
		for _, rp := range p.RegionalPricing {
			if rp.Region == region {
				final = final.Mul(rp.PriceMultiplier).Add(rp.DeliveryCharge)
				break
			}
		}
	}

	if quantity > 1 {
		var best *BulkDiscount
		for i := range p.BulkDiscounts {
			bd := &p.BulkDiscounts[i]
			if quantity >= bd.MinQuantity && (best == nil || bd.MinQuantity > best.MinQuantity) {
				best = bd
			}
		}
		if best != nil {
			final = final.Mul(one.Sub(best.DiscountPercentage.Div(hundred)))
		}
	}

	if p.DiscountPercentage.IsPositive() {
		final = final.Mul(one.Sub(p.DiscountPercentage.Div(hundred)))
	}

	return Quote{
		BasePrice:       p.BasePrice,
		CurrentPrice:    p.CurrentPrice,
		FinalPrice:      final.Round(2),
		DiscountApplied: p.DiscountPercentage,
		PriceType:       p.PriceType,
	}
}

// PriceRepository persists published prices
type PriceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Price, error)
	// FindEffective returns the active price for a brand and weight label
	// whose effectivity window covers now.
	FindEffective(ctx context.Context, brand stock.GasBrand, gasType string) (*Price, error)
	FindAll(ctx context.Context) ([]*Price, error)
	Save(ctx context.Context, price *Price) error
}

// PriceLookup resolves the final per-unit price for an order line. The
// order flow depends on this narrow view rather than the full repository.
type PriceLookup interface {
	CurrentPrice(ctx context.Context, brand stock.GasBrand, gasType, region string, quantity int) (*Quote, error)
}
