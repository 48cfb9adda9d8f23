package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/api"
	"github.com/newthinker/tradelens/internal/metrics"
	"github.com/newthinker/tradelens/internal/notifier/webhook"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/service"
	"github.com/newthinker/tradelens/internal/snapshot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TradeLens API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, fromFile, err := loadConfig()
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize logger
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	if !fromFile {
		log.Warn("no config file specified, using defaults")
	}

	loc, _ := cfg.Analytics.Location()
	defaultPeriod, err := period.ParseKind(cfg.Analytics.DefaultPeriod)
	if err != nil {
		return fmt.Errorf("analytics.default_period: %w", err)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	store, err := openArchive(cfg.Storage.Archive)
	if err != nil {
		return fmt.Errorf("opening archive storage: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, closeRepo, err := openRepository(ctx, cfg, store, log)
	if err != nil {
		return fmt.Errorf("opening trade repository: %w", err)
	}
	defer closeRepo()

	svc := service.New(repo, service.Options{
		Location:   loc,
		CacheSize:  cfg.Analytics.CacheSize,
		TopSymbols: cfg.Analytics.TopSymbols,
		Metrics:    reg,
		Logger:     log,
	})

	periods := make([]period.Period, 0, len(cfg.Snapshot.Periods))
	for _, name := range cfg.Snapshot.Periods {
		kind, err := period.ParseKind(name)
		if err != nil {
			return fmt.Errorf("snapshot.periods: %w", err)
		}
		periods = append(periods, period.Of(kind))
	}
	opts := snapshot.Options{
		Periods: periods,
		Timeout: cfg.Snapshot.Timeout,
		Metrics: reg,
		Logger:  log,
	}
	if hook := cfg.Snapshot.Webhook; hook.URL != "" {
		w, err := webhook.New(hook.URL, hook.Headers)
		if err != nil {
			return err
		}
		opts.Notifier = w
	}
	job := snapshot.NewJob(svc, store, opts)

	// The schedule is optional; runs can always be started over the API.
	var scheduler *snapshot.Scheduler
	if cfg.Snapshot.Enabled {
		scheduler, err = snapshot.NewScheduler(job, cfg.Snapshot.Schedule, loc, log)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	log.Info("starting TradeLens server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("trades_storage", cfg.Storage.Trades.Type),
		zap.String("timezone", loc.String()),
	)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	// Create API server
	server, err := api.NewServer(api.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		APIKey:        cfg.Server.APIKey,
		MetricsPath:   metricsPath,
		DefaultPeriod: defaultPeriod,
	}, api.Dependencies{
		Service:   svc,
		Snapshots: store,
		Runner:    job,
		Metrics:   reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
			return err
		}
	}

	log.Info("shutting down TradeLens server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Warn("snapshot scheduler did not stop cleanly", zap.Error(err))
		}
	}
	return server.Shutdown(shutdownCtx)
}
