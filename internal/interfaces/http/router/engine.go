package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Options configures the HTTP engine
type Options struct {
	ServiceName      string
	Production       bool
	HTTP             config.HTTPConfig
	Swagger          config.SwaggerConfig
	TracingEnabled   bool
	ProfilingEnabled bool

	Logger      *zap.Logger
	Tokens      middleware.AccessTokenValidator
	HTTPMetrics *telemetry.HTTPMetrics
	// RateLimiter is used when HTTP.RateLimitEnabled is set. The caller owns it.
	RateLimiter *middleware.RateLimiter
}

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	System  *handler.SystemHandler
	Catalog *handler.CatalogHandler
	Orders  *handler.OrderHandler
	Auth    *handler.AuthHandler
}

// NewEngine builds the gin engine with the middleware stack and every route
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	if opts.TracingEnabled {
		engine.Use(middleware.Tracing(opts.ServiceName))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.HTTPMetrics(opts.HTTPMetrics))
	engine.Use(middleware.Profiling(opts.ProfilingEnabled))

	security := middleware.DefaultSecurityConfig()
	security.HSTS = opts.Production
	engine.Use(middleware.Secure(security))

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	}
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(cors))

	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}
	if opts.HTTP.RateLimitEnabled && opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).NotFound(c)
	})

	engine.GET("/health", h.System.Health)

	if opts.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerGuard(true, opts.Swagger.AllowedIPs),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	optionalAuth := middleware.OptionalAuth(opts.Tokens, log)
	requireAuth := middleware.RequireAuth(opts.Tokens, log)

	catalogRoutes := NewDomainGroup("catalog", "")
	catalogRoutes.GET("/categories", h.Catalog.ListCategories)
	catalogRoutes.GET("/brands", h.Catalog.ListBrands)
	catalogRoutes.GET("/products", h.Catalog.ListProducts)
	catalogRoutes.GET("/products/:slug", h.Catalog.GetProduct)

	orderRoutes := NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", optionalAuth, h.Orders.CreateOrder)
	orderRoutes.GET("", h.Orders.ListOrders)
	orderRoutes.GET("/my", requireAuth, h.Orders.ListMyOrders)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/token", h.Auth.Login)
	authRoutes.POST("/token/refresh", h.Auth.Refresh)
	authRoutes.GET("/me", requireAuth, h.Auth.Me)

	NewRouter(engine).
		Register(catalogRoutes).
		Register(orderRoutes).
		Register(authRoutes).
		Setup()

	return engine
}
