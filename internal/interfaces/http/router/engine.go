package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/logger"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/handler"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Dependencies are everything the engine routes to
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Meter       metric.Meter // nil disables HTTP metrics
	Idempotency middleware.IdempotencyBackend
	Material    *handler.MaterialHandler
	Inventory   *handler.InventoryHandler
	Health      *handler.HealthHandler
}

// NewEngine builds the gin engine with the middleware chain and all routes
func NewEngine(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(logger.Recovery(deps.Logger), middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName)...)
	}
	engine.Use(logger.GinMiddleware(deps.Logger))
	if deps.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(deps.Meter)
		if err != nil {
			return nil, fmt.Errorf("http metrics: %w", err)
		}
		engine.Use(httpMetrics)
	}
	engine.Use(
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if deps.Health != nil {
		engine.GET("/health", deps.Health.Live)
		engine.GET("/health/ready", deps.Health.Ready)
	}

	var idempotency gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.Idempotency != nil {
		idempotency = middleware.Idempotency(deps.Idempotency, cfg.Idempotency, deps.Logger)
	}

	r := NewRouter(engine)
	for _, g := range MaterialRoutes(deps.Material, idempotency) {
		r.Register(g)
	}
	r.Register(InventoryRoutes(deps.Inventory, idempotency))
	r.Setup()

	return engine, nil
}
