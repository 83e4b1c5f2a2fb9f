// Command esms runs the Environmental Stress Monitoring Service backend:
// a signal generator feeding a bounded telemetry store, an HTTP/websocket
// API on top of it, and optional Redis mirroring of recorded readings.
//
// This system is NOT a medical diagnostic tool.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/stress-monitor/esms/internal/api"
	"github.com/stress-monitor/esms/internal/audit"
	"github.com/stress-monitor/esms/internal/cache"
	"github.com/stress-monitor/esms/internal/config"
	"github.com/stress-monitor/esms/internal/sensor"
	"github.com/stress-monitor/esms/internal/store"
)

func main() {
	// Step 1: Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Step 2: Initialize logging.
	log := newLogger(cfg.Log)
	slog.SetDefault(log)
	log.Info("starting ESMS backend", slog.String("version", api.Version))

	// Step 3: Audit trail (optional).
	var auditLog *audit.Logger
	if cfg.Audit.Dir != "" {
		auditLog, err = audit.NewLogger(cfg.Audit.Dir)
		if err != nil {
			log.Error("failed to initialize audit logger", slog.Any("error", err))
			os.Exit(1)
		}
		defer auditLog.Close()
	}

	// Step 4: Telemetry store.
	st := store.New(cfg.Store.HistorySize)
	log.Info("telemetry store initialized", slog.Int("history_size", cfg.Store.HistorySize))

	// Step 5: Optional Redis mirror; the recorder tee feeds both the store
	// and the mirror.
	recorder := sensor.MultiRecorder(st)
	if cfg.Redis.Addr != "" {
		ttl := time.Duration(cfg.Store.HistorySize) * cfg.Sensor.Interval
		mirror, err := cache.NewMirror(cfg.Redis.Addr, ttl, log)
		if err != nil {
			log.Error("failed to connect reading mirror", slog.Any("error", err))
			os.Exit(1)
		}
		defer mirror.Close()
		recorder = sensor.MultiRecorder(st, mirror)
		log.Info("reading mirror enabled", slog.String("addr", cfg.Redis.Addr))
	}

	// Step 6: Signal generator. Numeric misconfiguration is fatal here, not
	// at tick time.
	gen, err := sensor.New(cfg.Sensor.Interval, cfg.Sensor.Seed, log)
	if err != nil {
		log.Error("failed to create signal generator", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gen.Run(ctx, recorder)

	// Step 7: HTTP + websocket server.
	server := api.NewServer(st, recorder, cfg, log, auditLog)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server failure.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Info("received signal, shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			log.Error("server error", slog.Any("error", err))
		}
	}

	// Stop the generator, then drain the HTTP server.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server", slog.Any("error", err))
	}

	log.Info("shutdown complete")
}

// newLogger builds the process logger: tinted text for development, JSON
// otherwise.
func newLogger(cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	if cfg.Format == "text" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
