package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

func basePrice() *Price {
	p := &Price{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Brand:             stock.BrandLaugfs,
		GasType:           "12.5kg",
		BasePrice:         decimal.NewFromInt(4000),
		CurrentPrice:      decimal.NewFromInt(4200),
		IsActive:          true,
		EffectiveFrom:     time.Now().Add(-24 * time.Hour),
		PriceType:         PriceTypeStandard,
	}
	return p
}

func TestPriceIsEffective(t *testing.T) {
	now := time.Now()

	t.Run("active with open window", func(t *testing.T) {
		assert.True(t, basePrice().IsEffective(now))
	})

	t.Run("inactive", func(t *testing.T) {
		p := basePrice()
		p.IsActive = false
		assert.False(t, p.IsEffective(now))
	})

	t.Run("not yet effective", func(t *testing.T) {
		p := basePrice()
		p.EffectiveFrom = now.Add(time.Hour)
		assert.False(t, p.IsEffective(now))
	})

	t.Run("expired", func(t *testing.T) {
		p := basePrice()
		until := now.Add(-time.Hour)
		p.EffectiveUntil = &until
		assert.False(t, p.IsEffective(now))
	})
}

func TestPriceQuoteFor(t *testing.T) {
	t.Run("plain price", func(t *testing.T) {
		q := basePrice().QuoteFor("", 1)
		assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(4200)))
	})

	t.Run("regional multiplier and delivery charge", func(t *testing.T) {
		p := basePrice()
		p.RegionalPricing = []RegionalPrice{{
			ID:              uuid.New(),
			Region:          "Jaffna",
			PriceMultiplier: decimal.NewFromFloat(1.1),
			DeliveryCharge:  decimal.NewFromInt(150),
		}}

		q := p.QuoteFor("Jaffna", 1)
		// 4200*1.1 + 150
		assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(4770)), "got %s", q.FinalPrice)
	})

	t.Run("best bulk discount wins", func(t *testing.T) {
		p := basePrice()
		p.BulkDiscounts = []BulkDiscount{
			{ID: uuid.New(), MinQuantity: 5, DiscountPercentage: decimal.NewFromInt(5)},
			{ID: uuid.New(), MinQuantity: 10, DiscountPercentage: decimal.NewFromInt(10)},
		}

		q := p.QuoteFor("", 12)
		// 4200 * 0.9
		assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(3780)), "got %s", q.FinalPrice)
	})

	t.Run("general discount stacks after bulk", func(t *testing.T) {
		p := basePrice()
		p.DiscountPercentage = decimal.NewFromInt(10)
		p.BulkDiscounts = []BulkDiscount{
			{ID: uuid.New(), MinQuantity: 5, DiscountPercentage: decimal.NewFromInt(5)},
		}

		q := p.QuoteFor("", 6)
		// 4200 * 0.95 * 0.9
		assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(3591)), "got %s", q.FinalPrice)
	})

	t.Run("quantity of one skips bulk discounts", func(t *testing.T) {
		p := basePrice()
		p.BulkDiscounts = []BulkDiscount{
			{ID: uuid.New(), MinQuantity: 1, DiscountPercentage: decimal.NewFromInt(50)},
		}

		q := p.QuoteFor("", 1)
		assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(4200)))
	})
}

func TestPriceUpdateCurrentPrice(t *testing.T) {
	p := basePrice()

	require.NoError(t, p.UpdateCurrentPrice(decimal.NewFromInt(4350), "supplier increase", "admin"))
	assert.True(t, p.CurrentPrice.Equal(decimal.NewFromInt(4350)))
	require.Len(t, p.History, 1)
	assert.Equal(t, "supplier increase", p.History[0].Reason)

	assert.Error(t, p.UpdateCurrentPrice(decimal.NewFromInt(-1), "", "admin"))
}
