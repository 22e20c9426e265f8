package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gasflow/backend/internal/domain/stock"
)

type MockArrivalRunner struct {
	mock.Mock
}

func (m *MockArrivalRunner) FindLedgersWithPendingArrivals(ctx context.Context) ([]*stock.StockLedger, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.StockLedger), args.Error(1)
}

func (m *MockArrivalRunner) ExecuteArrival(ctx context.Context, shopID uuid.UUID, brand stock.GasBrand, gasType string) (bool, error) {
	args := m.Called(ctx, shopID, brand, gasType)
	return args.Bool(0), args.Error(1)
}

// ledgerWithArrival builds a single-line ledger whose arrival slot is
// scheduled for the given date
func ledgerWithArrival(t *testing.T, arrivalDate time.Time) *stock.StockLedger {
	t.Helper()

	ledger, err := stock.NewStockLedger(uuid.New())
	require.NoError(t, err)

	line, err := stock.NewStockLine(ledger.ID, stock.BrandLaugfs, stock.GasTypeMedium, decimal.NewFromInt(1700))
	require.NoError(t, err)
	ledger.Lines = []stock.StockLine{*line}

	require.NoError(t, ledger.ScheduleArrival(stock.BrandLaugfs, "Medium", arrivalDate, 30, "agent-1", "weekly run"))
	return ledger
}

func TestArrivalSchedulerRunNow(t *testing.T) {
	t.Run("executes due arrivals", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		sched := NewArrivalScheduler(runner, zap.NewNop(), DefaultArrivalSchedulerConfig())

		ledger := ledgerWithArrival(t, time.Now().Add(-time.Hour))
		runner.On("FindLedgersWithPendingArrivals", mock.Anything).
			Return([]*stock.StockLedger{ledger}, nil).Once()
		runner.On("ExecuteArrival", mock.Anything, ledger.ShopID, stock.BrandLaugfs, "Medium").
			Return(true, nil).Once()

		result, err := sched.RunNow(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.LedgersScanned)
		assert.Equal(t, 1, result.ArrivalsExecuted)
		assert.Equal(t, 0, result.Failures)
		runner.AssertExpectations(t)
	})

	t.Run("skips arrivals that are not due yet", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		sched := NewArrivalScheduler(runner, zap.NewNop(), DefaultArrivalSchedulerConfig())

		ledger := ledgerWithArrival(t, time.Now().Add(48*time.Hour))
		runner.On("FindLedgersWithPendingArrivals", mock.Anything).
			Return([]*stock.StockLedger{ledger}, nil).Once()

		result, err := sched.RunNow(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.LedgersScanned)
		assert.Equal(t, 0, result.ArrivalsExecuted)
		runner.AssertNotCalled(t, "ExecuteArrival", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("one failed line does not stop the scan", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		sched := NewArrivalScheduler(runner, zap.NewNop(), DefaultArrivalSchedulerConfig())

		first := ledgerWithArrival(t, time.Now().Add(-time.Hour))
		second := ledgerWithArrival(t, time.Now().Add(-time.Hour))
		runner.On("FindLedgersWithPendingArrivals", mock.Anything).
			Return([]*stock.StockLedger{first, second}, nil).Once()
		runner.On("ExecuteArrival", mock.Anything, first.ShopID, stock.BrandLaugfs, "Medium").
			Return(false, errors.New("ledger busy")).Once()
		runner.On("ExecuteArrival", mock.Anything, second.ShopID, stock.BrandLaugfs, "Medium").
			Return(true, nil).Once()

		result, err := sched.RunNow(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, result.LedgersScanned)
		assert.Equal(t, 1, result.ArrivalsExecuted)
		assert.Equal(t, 1, result.Failures)
		runner.AssertExpectations(t)
	})

	t.Run("surfaces lookup errors", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		sched := NewArrivalScheduler(runner, zap.NewNop(), DefaultArrivalSchedulerConfig())

		runner.On("FindLedgersWithPendingArrivals", mock.Anything).
			Return(nil, errors.New("db down")).Once()

		_, err := sched.RunNow(context.Background())

		assert.Error(t, err)
	})
}

func TestArrivalSchedulerLifecycle(t *testing.T) {
	t.Run("start runs an immediate scan and stop waits for it", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		cfg := DefaultArrivalSchedulerConfig()
		cfg.CheckInterval = time.Hour
		sched := NewArrivalScheduler(runner, zap.NewNop(), cfg)

		scanned := make(chan struct{})
		runner.On("FindLedgersWithPendingArrivals", mock.Anything).
			Return([]*stock.StockLedger{}, nil).
			Run(func(mock.Arguments) { close(scanned) })

		require.NoError(t, sched.Start(context.Background()))
		assert.True(t, sched.IsRunning())

		select {
		case <-scanned:
		case <-time.After(2 * time.Second):
			t.Fatal("initial scan never ran")
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, sched.Stop(stopCtx))
		assert.False(t, sched.IsRunning())
	})

	t.Run("disabled scheduler never starts the loop", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		cfg := DefaultArrivalSchedulerConfig()
		cfg.Enabled = false
		sched := NewArrivalScheduler(runner, zap.NewNop(), cfg)

		require.NoError(t, sched.Start(context.Background()))

		assert.False(t, sched.IsRunning())
		runner.AssertNotCalled(t, "FindLedgersWithPendingArrivals", mock.Anything)
	})
}

func TestArrivalSchedulerStatus(t *testing.T) {
	t.Run("reports not running before start", func(t *testing.T) {
		sched := NewArrivalScheduler(new(MockArrivalRunner), zap.NewNop(), DefaultArrivalSchedulerConfig())

		status := sched.Status()

		assert.False(t, status.IsRunning)
		assert.Empty(t, status.NextCheckIn)
		assert.Nil(t, status.LastScanAt)
	})

	t.Run("records the last scan time", func(t *testing.T) {
		runner := new(MockArrivalRunner)
		sched := NewArrivalScheduler(runner, zap.NewNop(), DefaultArrivalSchedulerConfig())

		runner.On("FindLedgersWithPendingArrivals", mock.Anything).
			Return([]*stock.StockLedger{}, nil).Once()

		_, err := sched.RunNow(context.Background())
		require.NoError(t, err)

		status := sched.Status()
		require.NotNil(t, status.LastScanAt)
		assert.WithinDuration(t, time.Now(), *status.LastScanAt, time.Second)
	})
}
