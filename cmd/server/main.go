package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/planhub/backend/internal/application/billing"
	"github.com/planhub/backend/internal/domain/shared"
	infrabilling "github.com/planhub/backend/internal/infrastructure/billing"
	"github.com/planhub/backend/internal/infrastructure/cache"
	"github.com/planhub/backend/internal/infrastructure/config"
	"github.com/planhub/backend/internal/infrastructure/event"
	"github.com/planhub/backend/internal/infrastructure/logger"
	"github.com/planhub/backend/internal/infrastructure/persistence"
	"github.com/planhub/backend/internal/infrastructure/telemetry"
	"github.com/planhub/backend/internal/interfaces/http/handler"
	"github.com/planhub/backend/internal/interfaces/http/middleware"
	"github.com/planhub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			PlanHub Backend API
//	@version		1.0
//	@description	Subscription billing reconciliation service driven by Stripe webhooks

//	@contact.name	API Support
//	@contact.url	https://github.com/planhub/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

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

	log.Info("Starting PlanHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
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

	// Register database query tracing callbacks
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingConfig := telemetry.DefaultDBTracingConfig()
		dbTracingConfig.Enabled = true
		dbTracingConfig.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracingConfig.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		dbTracing := telemetry.NewDBTracingPlugin(dbTracingConfig, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	// Idempotency store: Redis-backed with optional in-memory fallback
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(
		cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Idempotency.AllowInMemoryFallback),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Entitlement grants, revocations and recorded sales go to the audit log
	auditHandler := billingapp.NewEntitlementAuditHandler(log)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered",
		zap.Strings("audit_events", auditHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Stripe client configuration
	stripeConfig := &infrabilling.StripeConfig{
		SecretKey:       cfg.Stripe.SecretKey,
		WebhookSecret:   cfg.Stripe.WebhookSecret,
		IsTestMode:      cfg.Stripe.TestMode,
		DefaultCurrency: cfg.Stripe.DefaultCurrency,
	}
	subscriptionFetcher, err := infrabilling.NewStripeSubscriptionFetcher(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe subscription fetcher", zap.Error(err))
	}

	// Initialize application services
	reconcileService := billingapp.NewReconcileService(billingapp.ReconcileServiceConfig{
		Accounts: accountRepo,
		Products: productRepo,
		Fetcher:  subscriptionFetcher,
		EventBus: eventBus,
		Logger:   log,
	})
	invoiceService := billingapp.NewInvoiceService(billingapp.InvoiceServiceConfig{
		Accounts: accountRepo,
		Products: productRepo,
		EventBus: eventBus,
		Logger:   log,
	})
	webhookService := billingapp.NewWebhookService(billingapp.WebhookServiceConfig{
		Config:      stripeConfig,
		Reconciler:  reconcileService,
		Invoices:    invoiceService,
		Idempotency: idempotencyStore,
		IdempotencyConfig: shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		},
		Logger: log,
	})

	// Initialize HTTP handlers
	webhookHandler := handler.NewStripeWebhookHandler(webhookService)
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

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Open a span per request, enrich and mark errors
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.RequestIDSpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
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

	// Stripe webhook endpoint (no authentication; verified by signature).
	// Carries its own tighter body cap since Stripe events are small.
	webhookGroup := engine.Group("/webhooks")
	webhookGroup.Use(middleware.BodyLimit(cfg.HTTP.WebhookBodyLimit))
	webhookGroup.POST("/stripe", webhookHandler.HandleStripeWebhook)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

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
