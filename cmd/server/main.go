package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	checkoutapp "github.com/pos/backend/internal/application/checkout"
	notificationapp "github.com/pos/backend/internal/application/notification"
	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/cache"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/logger"
	notificationinfra "github.com/pos/backend/internal/infrastructure/notification"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/infrastructure/printing"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
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
		_ = log.Sync()
	}()

	log.Info("Starting POS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Idempotency store: Redis if configured, process-local otherwise
	var idemStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idemStore = redisStore
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		idemStore = cache.NewInMemoryIdempotencyStore()
		log.Warn("Redis not configured, using in-memory idempotency store")
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize repositories
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)
	stockItemRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	loyaltyTxRepo := persistence.NewGormTransactionRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Domain services
	adjuster := inventory.NewAdjuster(stockItemRepo, movementRepo)
	ledger := loyalty.NewLedger(accountRepo, loyaltyTxRepo)
	auditor := audit.NewRecorder(auditRepo, log)

	program, err := loyaltyProgramFromConfig(cfg.Loyalty)
	if err != nil {
		log.Fatal("Invalid loyalty program configuration", zap.Error(err))
	}
	programs := loyalty.StaticProgramProvider{Program: program}

	// Register peripherals
	printer := printing.NewLogPrinter(log)

	// Application services
	checkoutService := checkoutapp.NewCheckoutService(
		saleRepo,
		adjuster,
		ledger,
		programs,
		uow,
		idemStore,
		shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL},
		auditor,
		notificationRepo,
		log,
	).WithPeripherals(printer, printer)
	refundService := checkoutapp.NewRefundService(
		saleRepo,
		refundRepo,
		adjuster,
		ledger,
		programs,
		uow,
		auditor,
		notificationRepo,
		log,
	).WithPrinter(printer)
	notificationService := notificationapp.NewService(notificationRepo)

	// Notification dispatcher
	if cfg.Dispatcher.Enabled {
		dispatcher := notificationinfra.NewDispatcher(
			notificationRepo,
			notificationinfra.NewLogSender(log),
			notificationinfra.DispatcherConfig{
				BatchSize:    cfg.Dispatcher.BatchSize,
				PollInterval: cfg.Dispatcher.PollInterval,
			},
			log,
		)
		if err := dispatcher.Start(context.Background()); err != nil {
			log.Fatal("Failed to start notification dispatcher", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := dispatcher.Stop(stopCtx); err != nil {
				log.Error("Error stopping notification dispatcher", zap.Error(err))
			}
		}()
		log.Info("Notification dispatcher started",
			zap.Int("batch_size", cfg.Dispatcher.BatchSize),
			zap.Duration("poll_interval", cfg.Dispatcher.PollInterval),
		)
	}

	// HTTP handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	refundHandler := handler.NewRefundHandler(refundService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))

	jwtService := auth.NewJWTService(cfg.JWT)
	engine.Use(middleware.JWTAuthMiddleware(jwtService, "/health"))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	r := router.NewRouter(engine)
	r.Register(checkoutHandler).
		Register(refundHandler).
		Register(notificationHandler)
	r.Setup()

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

// loyaltyProgramFromConfig parses the configured program rates
func loyaltyProgramFromConfig(cfg config.LoyaltyConfig) (loyalty.Program, error) {
	earnRate, err := decimal.NewFromString(cfg.PointsPerCurrencyUnit)
	if err != nil {
		return loyalty.Program{}, err
	}
	redemptionValue, err := decimal.NewFromString(cfg.RedemptionValuePerPoint)
	if err != nil {
		return loyalty.Program{}, err
	}
	rounding := loyalty.ReversalRoundDown
	if cfg.ReversalRounding == string(loyalty.ReversalRoundUp) {
		rounding = loyalty.ReversalRoundUp
	}
	return loyalty.Program{
		PointsPerCurrencyUnit:   earnRate,
		RedemptionValuePerPoint: redemptionValue,
		ReversalRounding:        rounding,
	}, nil
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Warn("Health check failed", zap.Error(err))
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
