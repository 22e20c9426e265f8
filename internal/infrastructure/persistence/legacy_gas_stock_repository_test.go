package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLegacyStockTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&stock.LegacyGasStock{})
	require.NoError(t, err)

	return db
}

func newLegacyRecord(center string, brand stock.GasBrand, gasType stock.GasType, qty int) *stock.LegacyGasStock {
	record := &stock.LegacyGasStock{
		CenterName:        center,
		Brand:             brand,
		GasType:           gasType,
		AvailableQuantity: qty,
		Latitude:          6.9271,
		Longitude:         79.8612,
	}
	record.ID = uuid.New()
	record.Version = 1
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	return record
}

func TestGormLegacyGasStockRepository_SaveAndFindByID(t *testing.T) {
	db := setupLegacyStockTestDB(t)
	repo := NewGormLegacyGasStockRepository(db)
	ctx := context.Background()

	record := newLegacyRecord("Colombo Central", stock.BrandLitro, stock.GasTypeLarge, 120)
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, "Colombo Central", found.CenterName)
	assert.Equal(t, stock.BrandLitro, found.Brand)
	assert.Equal(t, stock.GasTypeLarge, found.GasType)
	assert.Equal(t, 120, found.AvailableQuantity)
}

func TestGormLegacyGasStockRepository_FindByID_NotFound(t *testing.T) {
	db := setupLegacyStockTestDB(t)
	repo := NewGormLegacyGasStockRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLegacyGasStockRepository_Save_Update(t *testing.T) {
	db := setupLegacyStockTestDB(t)
	repo := NewGormLegacyGasStockRepository(db)
	ctx := context.Background()

	record := newLegacyRecord("Kandy Depot", stock.BrandLaugfs, stock.GasTypeMedium, 50)
	require.NoError(t, repo.Save(ctx, record))

	require.NoError(t, record.Claim(10))
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, found.AvailableQuantity)
}

func TestGormLegacyGasStockRepository_FindAll(t *testing.T) {
	db := setupLegacyStockTestDB(t)
	repo := NewGormLegacyGasStockRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newLegacyRecord("Galle Depot", stock.BrandLitro, stock.GasTypeSmall, 30)))
	require.NoError(t, repo.Save(ctx, newLegacyRecord("Colombo Central", stock.BrandLaugfs, stock.GasTypeLarge, 80)))

	records, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Ordered by center name
	assert.Equal(t, "Colombo Central", records[0].CenterName)
	assert.Equal(t, "Galle Depot", records[1].CenterName)
}

func TestGormLegacyGasStockRepository_Delete(t *testing.T) {
	db := setupLegacyStockTestDB(t)
	repo := NewGormLegacyGasStockRepository(db)
	ctx := context.Background()

	record := newLegacyRecord("Jaffna Depot", stock.BrandLitro, stock.GasTypeMedium, 15)
	require.NoError(t, repo.Save(ctx, record))

	require.NoError(t, repo.Delete(ctx, record.ID))

	_, err := repo.FindByID(ctx, record.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLegacyGasStockRepository_Delete_NotFound(t *testing.T) {
	db := setupLegacyStockTestDB(t)
	repo := NewGormLegacyGasStockRepository(db)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
