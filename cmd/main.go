package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/http/api"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/http/swagger"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/repository"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/rubricfile"
	service "github.com/Vuyani-Magibisela/GSCMS-sub009/internal/app"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/config"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("setting log level: %w", err)
	}
	log := logger.Get()

	db, err := repository.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repository.Migrate(db); err != nil {
		return err
	}
	log.Info(ctx, "connected to sqlite", logger.String("path", cfg.DBPath))

	svc := service.New(repository.NewSQLStore(db),
		service.WithWorkerCount(cfg.AdvisoryWorkerCount),
		service.WithQueueSize(cfg.AdvisoryQueueSize),
		service.WithDedupeSize(cfg.AdvisoryDedupeSize),
		service.WithThreshold(cfg.ConsistencyThresholdPct),
		service.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)

	if err := seedRubrics(ctx, svc, cfg.RubricsFile); err != nil {
		return err
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	apiServer := api.NewServer(svc, svc, api.WithAutosaveRate(cfg.AutosaveRatePerSec, cfg.AutosaveBurst))
	router := apiServer.Router()
	swagger.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		// Pending advisories are flushed before the database closes.
		if err := svc.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("service stop: %w", err))
		}
		log.Info(shutdownCtx, "server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

// seedRubrics loads rubric templates from path into the store. An empty
// path seeds nothing.
func seedRubrics(ctx context.Context, svc *service.Service, path string) error {
	if path == "" {
		return nil
	}
	rubrics, err := rubricfile.Load(path)
	if err != nil {
		return err
	}
	for _, r := range rubrics {
		if err := svc.SaveRubric(ctx, r); err != nil {
			return fmt.Errorf("seeding rubric %s: %w", r.ID, err)
		}
	}
	logger.Get().Info(ctx, "rubrics seeded", logger.String("file", path), logger.Int("count", len(rubrics)))
	return nil
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
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

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
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
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *service.Service) {
	// GetStats refreshes the queue gauge itself.
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
