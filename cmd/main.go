package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/use-overseer/Orquesta/internal/adapters/http/api"
	"github.com/use-overseer/Orquesta/internal/adapters/http/swagger"
	"github.com/use-overseer/Orquesta/internal/adapters/repository"
	app "github.com/use-overseer/Orquesta/internal/app"
	"github.com/use-overseer/Orquesta/internal/auth"
	"github.com/use-overseer/Orquesta/internal/config"
	"github.com/use-overseer/Orquesta/pkg/logger"
	"github.com/use-overseer/Orquesta/pkg/metrics"
)

// HTTP server timeout constants.
const (
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Reinstall the logger with the configured format, then apply the
	// configured level (fallback to info on invalid input).
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Open the persistence backend.
	store, closeStore, err := repository.Open(
		repository.Backend(cfg.StoreBackend),
		cfg.StoreDir,
		repository.WithSyncWrites(cfg.StoreSync),
	)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open store", logger.Error(err))
		return
	}

	// Token manager guarding the API.
	authManager := auth.NewManager(store,
		auth.WithAdminToken(cfg.AdminToken),
		auth.WithDefaultExpiryDays(cfg.TokenExpiryDays),
	)
	if cfg.AdminToken == "" {
		loggerInstance.Warn(ctx, "admin_token not configured; token review endpoints are disabled")
	}

	// Create and start the assignment service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithStore(store),
		app.WithSeedWeights(cfg.SeedWeights),
		app.WithEpsilonRange(cfg.EpsilonMin, cfg.EpsilonMax),
		app.WithExploration(cfg.Exploration),
		app.WithLearningRate(cfg.LearningRate),
		app.WithNegativeFactor(cfg.NegativeFactor),
		app.WithWeightCap(cfg.WeightCap),
		app.WithSaturationWeeks(cfg.SaturationWeeks),
		app.WithTieBreak(cfg.TieBreak),
		app.WithPersistRetry(cfg.PersistAttempts, cfg.PersistBackoff),
		app.WithFlushTuning(cfg.FlushCapacity, cfg.FlushDebounce, cfg.FlushSaveTimeout),
	)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		if cerr := closeStore(); cerr != nil {
			loggerInstance.Error(ctx, "store close failed", logger.Error(cerr))
		}
		return
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// Router and routes.
	r := chi.NewRouter()

	// Register API documentation under /api-docs
	swagger.Register(ctx, r)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, authManager,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithHistoryLimit(cfg.HistoryLimit),
	)
	apiServer.Register(r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store_backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout: stop accepting requests, then stop
	// the service (final state flush), then release the store.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "service stop failed", logger.Error(err))
	}
	if err := closeStore(); err != nil {
		loggerInstance.Error(shutdownCtx, "store close failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Average pause over the process lifetime
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	// GetStats already refreshes the learning gauges; mirror the counts
	// that are cheap to read here as well.
	stats := svc.GetStats()

	if entries, ok := stats["history_entries"].(int); ok {
		metrics.UpdateHistoryEntries(entries)
	}
	if keys, ok := stats["weight_keys"].(int); ok {
		metrics.UpdateWeightKeys(keys)
	}
}
