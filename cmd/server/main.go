package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	orderapp "github.com/gasflow/backend/internal/application/order"
	shopapp "github.com/gasflow/backend/internal/application/shop"
	stockapp "github.com/gasflow/backend/internal/application/stock"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/infrastructure/cache"
	"github.com/gasflow/backend/internal/infrastructure/config"
	"github.com/gasflow/backend/internal/infrastructure/event"
	"github.com/gasflow/backend/internal/infrastructure/logger"
	"github.com/gasflow/backend/internal/infrastructure/persistence"
	"github.com/gasflow/backend/internal/infrastructure/scheduler"
	"github.com/gasflow/backend/internal/interfaces/http/handler"
	"github.com/gasflow/backend/internal/interfaces/http/middleware"
	"github.com/gasflow/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting GasFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with zap-backed GORM logging
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	ledgerRepo := persistence.NewGormStockLedgerRepository(db.DB)
	legacyStockRepo := persistence.NewGormLegacyGasStockRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	priceRepo := persistence.NewGormPriceRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)

	// Initialize event bus and audit subscriptions
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(func(ctx context.Context, evt shared.DomainEvent) error {
		log.Info("stock event",
			zap.String("event_type", evt.EventType()),
			zap.String("ledger_id", evt.AggregateID().String()),
		)
		return nil
	}, "stock.movement_recorded", "stock.reserved", "stock.arrival_scheduled", "stock.arrival_executed")

	// Initialize application services
	stockManager := stockapp.NewStockManager(ledgerRepo, legacyStockRepo, log)
	stockManager.SetEventPublisher(eventBus)

	orderService := orderapp.NewOrderService(orderRepo, legacyStockRepo, stockManager, priceRepo, log)
	orderService.SetDirectories(shopRepo, customerRepo)

	shopService := shopapp.NewShopService(shopRepo, customerRepo, ledgerRepo, log)

	// Duplicate-submission guard for order creation. Redis when enabled,
	// in-memory otherwise.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	if cfg.Redis.Enabled {
		idempotencyStore, err := storeFactory.CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		orderService.SetIdempotencyStore(idempotencyStore)
	} else {
		orderService.SetIdempotencyStore(storeFactory.CreateInMemoryStore())
	}

	// Arrival scheduler credits scheduled deliveries when their date arrives
	arrivalScheduler := scheduler.NewArrivalScheduler(stockManager, log, scheduler.ArrivalSchedulerConfig{
		Enabled:       cfg.Scheduler.Enabled,
		CheckInterval: cfg.Scheduler.CheckInterval,
	})
	if err := arrivalScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start arrival scheduler", zap.Error(err))
	}
	defer func() {
		if err := arrivalScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping arrival scheduler", zap.Error(err))
		}
	}()
	if cfg.Scheduler.Enabled {
		log.Info("Arrival scheduler started",
			zap.Duration("check_interval", cfg.Scheduler.CheckInterval),
		)
	}

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	stockHandler := handler.NewStockHandler(stockManager)
	shopHandler := handler.NewShopHandler(shopService)
	schedulerHandler := handler.NewSchedulerHandler(arrivalScheduler)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Order lifecycle
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/summary", orderHandler.Summary)
	orderRoutes.GET("/track/:orderNumber", orderHandler.Track)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.POST("/:id/confirm", orderHandler.Confirm)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.POST("/:id/return", orderHandler.Return)
	orderRoutes.POST("/:id/rate", orderHandler.Rate)
	orderRoutes.PUT("/:id/status", orderHandler.UpdateStatus)

	// Per-shop stock ledgers
	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.GET("/availability", stockHandler.CheckAvailability)
	stockRoutes.GET("/:shopId", stockHandler.GetLedger)
	stockRoutes.GET("/:shopId/history", stockHandler.GetHistory)
	stockRoutes.POST("/:shopId/actions", stockHandler.ApplyAction)
	stockRoutes.POST("/:shopId/arrivals", stockHandler.ScheduleArrival)
	stockRoutes.POST("/:shopId/arrivals/cancel", stockHandler.CancelArrival)

	// Arrival scheduler control
	schedulerRoutes := router.NewDomainGroup("scheduler", "/scheduler")
	schedulerRoutes.POST("/arrivals/run", schedulerHandler.RunArrivals)
	schedulerRoutes.GET("/status", schedulerHandler.Status)

	// Shops and their customers
	shopRoutes := router.NewDomainGroup("shops", "/shops")
	shopRoutes.POST("", shopHandler.Register)
	shopRoutes.GET("", shopHandler.List)
	shopRoutes.GET("/:id", shopHandler.Get)
	shopRoutes.PUT("/:id/status", shopHandler.ChangeStatus)

	customerRoutes := router.NewDomainGroup("customers", "/customers")
	customerRoutes.POST("", shopHandler.RegisterCustomer)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(orderRoutes).
		Register(stockRoutes).
		Register(schedulerRoutes).
		Register(shopRoutes).
		Register(customerRoutes).
		Register(systemRoutes)

	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
