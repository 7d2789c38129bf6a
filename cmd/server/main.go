package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appinv "github.com/hongquyngo/vti-production-sub002/internal/application/inventory"
	appprod "github.com/hongquyngo/vti-production-sub002/internal/application/production"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/cache"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/event"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/logger"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/persistence"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/storage"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/strategy"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/telemetry"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/handler"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const ledgerStatsInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	log := loggerProvider.Bridge(baseLog, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider)

	log.Info("starting production materials service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, cfg.Log)))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, log).Register(db.DB); err != nil {
		return fmt.Errorf("db tracing: %w", err)
	}
	log.Info("database connected")

	// Idempotency store shared by HTTP replay protection and event handlers
	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cfg.Idempotency,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Document archive
	var archive appprod.DocumentArchive = storage.NewNoopArchive(log)
	if cfg.Storage.Enabled() {
		s3Archive, err := storage.NewS3DocumentArchive(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			return err
		}
		archive = s3Archive
	}

	// Events
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	eventBus.Subscribe(event.NewIdempotentHandler("document-archive",
		appprod.NewArchiveHandler(archive, log), store, log,
		event.WithTTL(cfg.Idempotency.TTL)))
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Warn("event bus did not drain", zap.Error(err))
		}
	}()

	// Services
	materialService := appprod.NewMaterialService(persistence.NewGormProductionTransactionScope(db.DB), log)
	materialService.SetEventPublisher(eventBus)

	strategies, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		return fmt.Errorf("register allocation strategies: %w", err)
	}
	allocation, err := strategies.Get(cfg.Inventory.AllocationStrategy)
	if err != nil {
		return err
	}
	materialService.SetAllocationStrategy(allocation)
	log.Info("Lot allocation strategy selected", zap.String("strategy", allocation.Name()))

	// Metrics
	var httpMeter metric.Meter
	if meterProvider.IsEnabled() {
		meter := meterProvider.Meter(telemetry.TracerName)
		httpMeter = meter
		materialMetrics, err := telemetry.NewMaterialMetrics(telemetry.MaterialMetricsConfig{
			Meter:    meter,
			Logger:   log,
			Provider: telemetry.NewGormLedgerStatsProvider(db.DB),
		})
		if err != nil {
			return err
		}
		materialMetrics.StartPeriodicCollection(ctx, ledgerStatsInterval)
		defer materialMetrics.Stop()
		materialService.SetMetrics(materialMetrics)
	}

	// Services and handlers
	queryService := appprod.NewQueryService(
		persistence.NewGormProductionOrderRepository(db.DB),
		persistence.NewGormMaterialRequirementRepository(db.DB),
		persistence.NewGormIssuanceRepository(db.DB),
		persistence.NewGormReturnRepository(db.DB),
	)
	inventoryService := appinv.NewInventoryService(
		persistence.NewGormLotEntryRepository(db.DB),
		persistence.NewGormTransactionScope(db.DB),
		log,
	)

	engine, err := router.NewEngine(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		Meter:       httpMeter,
		Idempotency: store,
		Material:    handler.NewMaterialHandler(materialService, queryService),
		Inventory:   handler.NewInventoryHandler(inventoryService),
		Health:      handler.NewHealthHandler(db, version),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited gracefully")
	return nil
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx := context.Background()
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("tracer shutdown", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Warn("meter shutdown", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Warn("logger provider shutdown", zap.Error(err))
	}
}
