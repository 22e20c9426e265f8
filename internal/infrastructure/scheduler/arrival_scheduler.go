package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/gasflow/backend/internal/application/stock"
	"github.com/gasflow/backend/internal/domain/stock"
)

// ArrivalRunner is the slice of stock operations the scheduler drives.
type ArrivalRunner interface {
	FindLedgersWithPendingArrivals(ctx context.Context) ([]*stock.StockLedger, error)
	ExecuteArrival(ctx context.Context, shopID uuid.UUID, brand stock.GasBrand, gasType string) (bool, error)
}

// ArrivalSchedulerConfig holds configuration for the arrival scheduler
type ArrivalSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// CheckInterval is how often due arrivals are scanned for
	CheckInterval time.Duration

	// ScanTimeout is the maximum time for one scan across all ledgers
	ScanTimeout time.Duration
}

// DefaultArrivalSchedulerConfig returns default configuration
func DefaultArrivalSchedulerConfig() ArrivalSchedulerConfig {
	return ArrivalSchedulerConfig{
		Enabled:       true,
		CheckInterval: time.Hour,
		ScanTimeout:   5 * time.Minute,
	}
}

// ScanResult summarizes one arrival scan
type ScanResult struct {
	LedgersScanned   int       `json:"ledgers_scanned"`
	ArrivalsExecuted int       `json:"arrivals_executed"`
	Failures         int       `json:"failures"`
	StartedAt        time.Time `json:"started_at"`
	Duration         string    `json:"duration"`
}

// SchedulerStatus is the observable state of the arrival scheduler
type SchedulerStatus struct {
	IsRunning   bool       `json:"is_running"`
	NextCheckIn string     `json:"next_check_in,omitempty"`
	LastScanAt  *time.Time `json:"last_scan_at,omitempty"`
}

// ArrivalScheduler periodically scans shop ledgers for scheduled arrivals
// that have reached their date and credits them. One failed line never stops
// the rest of the scan.
type ArrivalScheduler struct {
	stocks    ArrivalRunner
	logger    *zap.Logger
	config    ArrivalSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	scanning  bool
	lastScan  *time.Time
	nextScan  time.Time
}

// NewArrivalScheduler creates a new arrival scheduler
func NewArrivalScheduler(stocks ArrivalRunner, logger *zap.Logger, config ArrivalSchedulerConfig) *ArrivalScheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Hour
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = 5 * time.Minute
	}
	return &ArrivalScheduler{
		stocks: stocks,
		logger: logger,
		config: config,
	}
}

// Start starts the scan loop. An immediate scan runs first so arrivals that
// came due while the service was down are not delayed a full interval.
func (s *ArrivalScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Arrival scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.nextScan = time.Now()
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Arrival scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *ArrivalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Arrival scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Arrival scheduler stop timed out")
		return ctx.Err()
	}
}

// run executes an immediate scan and then one per interval
func (s *ArrivalScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	if _, err := s.scan(ctx); err != nil {
		s.logger.Error("Initial arrival scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		s.mu.Lock()
		s.nextScan = time.Now().Add(s.config.CheckInterval)
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			s.logger.Debug("Arrival scan loop stopping")
			return
		case <-ticker.C:
			if _, err := s.scan(ctx); err != nil {
				s.logger.Error("Arrival scan failed", zap.Error(err))
			}
		}
	}
}

// RunNow triggers a synchronous scan outside the regular interval
func (s *ArrivalScheduler) RunNow(ctx context.Context) (*ScanResult, error) {
	return s.scan(ctx)
}

// Status reports whether the loop is running and when the next scan is due
func (s *ArrivalScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		IsRunning:  s.isRunning,
		LastScanAt: s.lastScan,
	}
	if s.isRunning {
		status.NextCheckIn = time.Until(s.nextScan).Round(time.Second).String()
	}
	return status
}

// IsRunning returns whether the scheduler loop is active
func (s *ArrivalScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// scan credits every due arrival across all ledgers that hold one
func (s *ArrivalScheduler) scan(ctx context.Context) (*ScanResult, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, ErrScanAlreadyInProgress
	}
	s.scanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		now := time.Now()
		s.lastScan = &now
		s.mu.Unlock()
	}()

	scanCtx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	startedAt := time.Now()
	result := &ScanResult{StartedAt: startedAt}

	ledgers, err := s.stocks.FindLedgersWithPendingArrivals(scanCtx)
	if err != nil {
		return nil, err
	}
	result.LedgersScanned = len(ledgers)

	now := time.Now()
	for _, ledger := range ledgers {
		for _, line := range ledger.PendingArrivals() {
			if !line.NextArrival.IsDue(now) || !line.NextArrival.AutoUpdateEnabled {
				continue
			}

			executed, err := s.stocks.ExecuteArrival(scanCtx, ledger.ShopID, line.Brand, line.GasType.String())
			if err != nil {
				result.Failures++
				s.logger.Error("Arrival execution failed",
					zap.String("shop_id", ledger.ShopID.String()),
					zap.String("brand", line.Brand.String()),
					zap.String("gas_type", line.GasType.String()),
					zap.Error(err),
				)
				continue
			}
			if executed {
				result.ArrivalsExecuted++
			}
		}
	}

	result.Duration = time.Since(startedAt).Round(time.Millisecond).String()
	s.logger.Info("Arrival scan completed",
		zap.Int("ledgers_scanned", result.LedgersScanned),
		zap.Int("arrivals_executed", result.ArrivalsExecuted),
		zap.Int("failures", result.Failures),
		zap.String("duration", result.Duration),
	)

	return result, nil
}

// Ensure the stock manager satisfies the runner interface
var _ ArrivalRunner = (*appstock.StockManager)(nil)
