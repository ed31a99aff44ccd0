// cmd/pipeline-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/config"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/common/observability"
	"refi-pipeline/internal/connectors/identity"
	"refi-pipeline/internal/connectors/persist"
	"refi-pipeline/internal/connectors/policy"
	"refi-pipeline/internal/connectors/vehicle"
	"refi-pipeline/internal/pipeline"
	"refi-pipeline/internal/reconcile"
	"refi-pipeline/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.Wrap(zapLog)

	zapLog.Info("Starting pipeline server...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	ctx := context.Background()

	// --- Init Redis snapshot store with retry ---
	snapshotTTL := time.Duration(cfg.Policy.SnapshotTTLHours) * time.Hour
	var snapshots *cache.SnapshotStore
	err = retryWithBackoff(func() error {
		snapshots = cache.NewSnapshotStore(cfg.Redis, snapshotTTL)
		return snapshots.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		// Degraded start: the cached tier is skipped, the simulated tier
		// still catches every outage.
		zapLog.Warn("redis unavailable, snapshot tier disabled", zap.Error(err))
		snapshots = nil
	} else {
		defer snapshots.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init connectors ---
	identityCfg := identity.LoadConfig(cfg.Services)
	vehicleCfg := vehicle.LoadConfig(cfg.Services, cfg.Policy)
	policyCfg := policy.LoadConfig(cfg.Services)

	identitySvc := identity.NewService(
		identity.NewVerifyClient(identityCfg),
		identity.NewReportClient(identityCfg),
		snapshots, log,
	)
	vehicleSvc := vehicle.NewService(
		vehicle.NewRegistryClient(vehicleCfg),
		vehicle.NewValuationClient(vehicleCfg),
		snapshots, vehicleCfg, log,
	)
	policySvc := policy.NewService(
		policy.NewEvaluateClient(policyCfg),
		snapshots, log,
	)
	saver := persist.NewClient(cfg.Services, log)

	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		Identity:   identitySvc,
		Vehicle:    vehicleSvc,
		Policy:     policySvc,
		Saver:      saver,
		Reconciler: reconcile.NewReconciler(cfg.Policy, log),
		Snapshots:  snapshots,
		Obs:        obs,
		Logger:     log,
	})

	// --- HTTP surfaces ---
	api := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.New(orchestrator, server.NewSessionStore(), log).Routes(),
	}
	go func() {
		zapLog.Info("API listening", zap.Int("port", cfg.Server.Port))
		if err := api.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("api server failed", zap.Error(err))
		}
	}()

	go func() {
		// Metrics and pprof share the ops port.
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/debug/", http.DefaultServeMux)
		zapLog.Info("Metrics listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.MetricsPort), mux); err != nil {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Wait for shutdown signal ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Pipeline server stopped")
}
