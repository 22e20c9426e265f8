package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gasflow/backend/internal/domain/order"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_FindByCustomer(t *testing.T) {
	t.Run("counts and pages in separate queries", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		status := order.StatusDelivered

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE customer_id = \$1 AND status = \$2`).
			WithArgs(customerID, status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		rows := sqlmock.NewRows([]string{"id", "order_number", "customer_id", "status", "total_price"}).
			AddRow(uuid.New(), "ORD1A", customerID, "Delivered", decimal.NewFromInt(3400)).
			AddRow(uuid.New(), "ORD1B", customerID, "Delivered", decimal.NewFromInt(1700))
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE customer_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT .* OFFSET .*`).
			WillReturnRows(rows)

		orders, total, err := repo.FindByCustomer(context.Background(), customerID, order.ListFilter{
			Status: &status,
			Page:   2,
			Limit:  5,
		})

		require.NoError(t, err)
		assert.EqualValues(t, 12, total)
		assert.Len(t, orders, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_Summarize(t *testing.T) {
	t.Run("maps the aggregate row onto the summary", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		rows := sqlmock.NewRows([]string{
			"total_orders", "total_spent", "completed_orders", "pending_orders", "cancelled_orders",
		}).AddRow(9, decimal.NewFromInt(15300), 4, 3, 2)

		mock.ExpectQuery(`SELECT COUNT\(\*\) as total_orders,.* FROM "orders" WHERE customer_id`).
			WillReturnRows(rows)

		summary, err := repo.Summarize(context.Background(), customerID)

		require.NoError(t, err)
		assert.EqualValues(t, 9, summary.TotalOrders)
		assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(15300)))
		assert.EqualValues(t, 4, summary.CompletedOrders)
		assert.EqualValues(t, 3, summary.PendingOrders)
		assert.EqualValues(t, 2, summary.CancelledOrders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	newPendingOrder := func(t *testing.T) *order.Order {
		t.Helper()
		shopID := uuid.New()
		o, err := order.NewOrder(order.NewOrderParams{
			CustomerID: uuid.New(),
			ShopID:     &shopID,
			Details: order.OrderDetails{
				Brand:      "Laugfs",
				GasType:    "5kg",
				Quantity:   2,
				UnitPrice:  decimal.NewFromInt(1700),
				TotalPrice: decimal.NewFromInt(3400),
			},
			Delivery: order.DeliveryInfo{
				Address:       "12 Galle Road, Colombo",
				ContactNumber: "0771234567",
			},
		})
		require.NoError(t, err)
		return o
	}

	t.Run("bumps version and inserts new history on success", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := newPendingOrder(t)
		require.NoError(t, o.TransitionTo(order.StatusConfirmed, "system", ""))
		loadedVersion := o.Version

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "order_status_history".*ON CONFLICT`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), o)

		require.NoError(t, err)
		assert.Equal(t, loadedVersion+1, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports conflict when the version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := newPendingOrder(t)
		loadedVersion := o.Version

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, loadedVersion, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderClause(t *testing.T) {
	t.Run("defaults to newest first", func(t *testing.T) {
		assert.Equal(t, "created_at DESC", orderClause("", ""))
	})

	t.Run("accepts known columns and directions", func(t *testing.T) {
		assert.Equal(t, "total_price ASC", orderClause("Total_Price", "asc"))
	})

	t.Run("rejects unknown columns", func(t *testing.T) {
		assert.Equal(t, "created_at ASC", orderClause("details; DROP TABLE orders", "asc"))
	})
}
