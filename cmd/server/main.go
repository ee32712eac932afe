package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Product catalog and transactional order placement

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	production := cfg.App.Env == "production"

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// Rebuild the logger so records also flow to the OTLP log pipeline
	log, err := logger.New(logCfg, providers.LogCore())
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", telemetry.ServiceVersion),
	)

	// slow queries are reported by the DB instrumentation below
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), logger.WithSlowThreshold(0))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.IsSQLite() {
		// PostgreSQL schemas come from cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate SQLite schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.IsSQLite() {
		dbSystem = "sqlite"
	}
	dbInstrumentation, err := telemetry.NewDBInstrumentation(providers.Meter.Meter(), providers.DBConfig(dbSystem), log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := db.DB.Use(dbInstrumentation); err != nil {
		log.Fatal("Failed to register database instrumentation", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	orderMetrics, err := telemetry.NewOrderMetrics(providers.Meter.Meter())
	if err != nil {
		log.Fatal("Failed to create order metrics", zap.Error(err))
	}
	httpMetrics, err := telemetry.NewHTTPMetrics(providers.Meter.Meter())
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Catalog
	productService := catalogapp.NewProductService(productRepo, categoryRepo, brandRepo, log)
	if resolver := newImageResolver(ctx, cfg.Storage, log); resolver != nil {
		productService.SetImageResolver(resolver)
	}

	// Orders
	eventBus := event.NewInMemoryEventBus(log)
	metricsHandler := tradeapp.NewOrderMetricsHandler(orderMetrics)
	auditHandler := tradeapp.NewOrderAuditHandler(log)
	eventBus.Subscribe(metricsHandler)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered",
		zap.Strings("order_metrics_events", metricsHandler.EventTypes()),
		zap.Strings("order_audit_events", auditHandler.EventTypes()),
		zap.Int("handlers", eventBus.HandlerCount()),
	)

	orderService := tradeapp.NewOrderService(
		persistence.NewGormOrderTransactionScope(db.DB), orderRepo, productService, log)
	orderService.SetEventPublisher(eventBus)
	orderService.SetMetrics(orderMetrics)

	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!production),
		)
		replays, err := factory.CreateStore(ctx)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		if closer, ok := replays.(interface{ Close() error }); ok {
			defer func() {
				if err := closer.Close(); err != nil {
					log.Warn("Error closing idempotency store", zap.Error(err))
				}
			}()
		}
		orderService.SetReplayStore(replays, cfg.Idempotency.TTL)
	}

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)

	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Close()
	}

	engine := router.NewEngine(router.Options{
		ServiceName:      cfg.Telemetry.ServiceName,
		Production:       production,
		HTTP:             cfg.HTTP,
		Swagger:          cfg.Swagger,
		TracingEnabled:   providers.Tracer.IsEnabled(),
		ProfilingEnabled: providers.Profiler.IsEnabled(),
		Logger:           log,
		Tokens:           jwtService,
		HTTPMetrics:      httpMetrics,
		RateLimiter:      rateLimiter,
	}, router.Handlers{
		System:  handler.NewSystemHandler(db),
		Catalog: handler.NewCatalogHandler(productService),
		Orders:  handler.NewOrderHandler(orderService),
		Auth:    handler.NewAuthHandler(authService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newImageResolver picks how image keys become URLs: a public CDN base when
// configured, presigned S3 URLs when storage is enabled, otherwise none.
func newImageResolver(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) catalogapp.ImageURLResolver {
	if cfg.PublicBaseURL != "" {
		log.Info("Serving product images from public base URL", zap.String("base_url", cfg.PublicBaseURL))
		return storage.NewPublicURLResolver(cfg.PublicBaseURL)
	}
	if !cfg.Enabled {
		return nil
	}
	store, err := storage.NewS3ImageStore(ctx, &cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to create image store", zap.Error(err))
	}
	log.Info("Serving product images through presigned URLs", zap.String("bucket", store.Bucket()))
	return store
}
