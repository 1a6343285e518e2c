package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/billing/backend/internal/application/ledger"
	partnerapp "github.com/billing/backend/internal/application/partner"
	receivableapp "github.com/billing/backend/internal/application/receivable"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/cache"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/event"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/billing/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Billing Backend API
//	@version		1.0
//	@description	Multitenant billing ledger - transactions, payments, store credit and receivable documents

//	@contact.name	API Support
//	@contact.url	https://github.com/billing/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

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

	log.Info("Starting Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("default_currency", cfg.App.DefaultCurrency),
	)

	// Initialize OpenTelemetry tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

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

	// Initialize repositories
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	creditSnapshotRepo := persistence.NewGormCreditSnapshotRepository(db.DB)
	matchSuggestionRepo := persistence.NewGormMatchSuggestionRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	estimateRepo := persistence.NewGormEstimateRepository(db.DB)

	// Document resolver validates document references against their owning repositories
	documentResolver := persistence.NewRepositoryDocumentResolver(invoiceRepo, creditNoteRepo, estimateRepo)

	// Transaction manager for multi-aggregate writes
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store for event handlers: Redis when reachable, in-memory otherwise
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Payment amount changed -> purge stale match suggestions
	amountChangedHandler := ledgerapp.NewPaymentAmountChangedHandler(matchSuggestionRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(amountChangedHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("payment_amount_changed_events", amountChangedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	defaultCurrency := valueobject.Currency(cfg.App.DefaultCurrency)
	transactionService := ledgerapp.NewTransactionService(
		transactionRepo, paymentRepo, creditSnapshotRepo, documentResolver, txManager, eventBus, log,
	)
	paymentService := ledgerapp.NewPaymentService(
		paymentRepo, transactionRepo, matchSuggestionRepo, creditSnapshotRepo,
		customerRepo, invoiceRepo, creditNoteRepo,
		transactionService, txManager, eventBus, defaultCurrency,
	)
	creditService := ledgerapp.NewCreditBalanceService(
		creditSnapshotRepo, customerRepo, transactionService, defaultCurrency,
	)
	customerService := partnerapp.NewCustomerService(customerRepo, eventBus)
	invoiceService := receivableapp.NewInvoiceService(invoiceRepo, customerRepo, eventBus, defaultCurrency)
	creditNoteService := receivableapp.NewCreditNoteService(creditNoteRepo, invoiceRepo, customerRepo, eventBus, defaultCurrency)
	estimateService := receivableapp.NewEstimateService(estimateRepo, invoiceRepo, customerRepo, txManager, eventBus, defaultCurrency)

	// Initialize HTTP handlers
	transactionHandler := handler.NewTransactionHandler(transactionService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	creditHandler := handler.NewCreditHandler(creditService)
	customerHandler := handler.NewCustomerHandler(customerService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	estimateHandler := handler.NewEstimateHandler(estimateService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Span per request (if telemetry enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. Tenant - Extract tenant context from X-Tenant-ID
	// 9. Idempotency - Reject replayed mutations carrying an Idempotency-Key
	// 10. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Tenant extraction: header-based, optional so handlers can fall back
	// to the development default tenant
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Required = false
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Idempotency-Key replay protection for mutation endpoints
	idempotencyConfig := middleware.DefaultIdempotencyMiddlewareConfig(idempotencyStore)
	idempotencyConfig.Logger = log
	engine.Use(middleware.Idempotency(idempotencyConfig))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ledger domain (transactions, payments, store credit)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ledger service ready"})
	})

	// Transaction routes
	ledgerRoutes.POST("/transactions", transactionHandler.Create)
	ledgerRoutes.GET("/transactions", transactionHandler.List)
	ledgerRoutes.GET("/transactions/:id", transactionHandler.Get)
	ledgerRoutes.PUT("/transactions/:id", transactionHandler.Update)
	ledgerRoutes.DELETE("/transactions/:id", transactionHandler.Delete)
	ledgerRoutes.GET("/transactions/:id/tree", transactionHandler.GetTree)

	// Payment routes
	ledgerRoutes.POST("/payments", paymentHandler.Create)
	ledgerRoutes.GET("/payments", paymentHandler.List)
	ledgerRoutes.GET("/payments/:id", paymentHandler.Get)
	ledgerRoutes.PUT("/payments/:id/amount", paymentHandler.SetAmount)
	ledgerRoutes.POST("/payments/:id/void", paymentHandler.Void)
	ledgerRoutes.GET("/payments/:id/breakdown", paymentHandler.Breakdown)
	ledgerRoutes.GET("/payments/:id/suggestions", paymentHandler.Suggestions)

	// Store credit routes
	ledgerRoutes.GET("/customers/:customer_id/credit/balance", creditHandler.Balance)
	ledgerRoutes.GET("/customers/:customer_id/credit/history", creditHandler.History)
	ledgerRoutes.POST("/customers/:customer_id/credit/adjust", creditHandler.Adjust)

	// Partner domain (customers)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "partner service ready"})
	})

	// Customer routes
	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/:id", customerHandler.GetByID)
	partnerRoutes.GET("/customers/code/:code", customerHandler.GetByCode)
	partnerRoutes.PUT("/customers/:id", customerHandler.Update)
	partnerRoutes.POST("/customers/:id/activate", customerHandler.Activate)
	partnerRoutes.POST("/customers/:id/deactivate", customerHandler.Deactivate)

	// Receivable domain (invoices, credit notes, estimates)
	receivableRoutes := router.NewDomainGroup("receivable", "/receivable")
	receivableRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "receivable service ready"})
	})

	// Invoice routes
	receivableRoutes.POST("/invoices", invoiceHandler.Create)
	receivableRoutes.GET("/invoices", invoiceHandler.List)
	receivableRoutes.GET("/invoices/:id", invoiceHandler.Get)
	receivableRoutes.POST("/invoices/:id/void", invoiceHandler.Void)

	// Credit note routes
	receivableRoutes.POST("/credit-notes", creditNoteHandler.Create)
	receivableRoutes.GET("/credit-notes", creditNoteHandler.List)
	receivableRoutes.GET("/credit-notes/:id", creditNoteHandler.Get)
	receivableRoutes.POST("/credit-notes/:id/void", creditNoteHandler.Void)

	// Estimate routes
	receivableRoutes.POST("/estimates", estimateHandler.Create)
	receivableRoutes.GET("/estimates", estimateHandler.List)
	receivableRoutes.GET("/estimates/:id", estimateHandler.Get)
	receivableRoutes.POST("/estimates/:id/convert", estimateHandler.Convert)

	// Register all domain groups
	r.Register(ledgerRoutes).
		Register(partnerRoutes).
		Register(receivableRoutes)

	// Register system routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
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
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
