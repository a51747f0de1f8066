package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jcmexdev/statesaga/internal/app"
	"github.com/jcmexdev/statesaga/internal/config"
	"github.com/jcmexdev/statesaga/internal/eventlog"
	"github.com/jcmexdev/statesaga/internal/eventlog/sqlite"
	"github.com/jcmexdev/statesaga/internal/httpx"
	"github.com/jcmexdev/statesaga/internal/lifecycle"
	"github.com/jcmexdev/statesaga/internal/pkg/locker"
	"github.com/jcmexdev/statesaga/internal/pkg/telemetry"
	"github.com/jcmexdev/statesaga/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	a := app.New(cfg, store.Location{Pathname: "/"})
	a.Logger.SetContext(eventlog.EnvironmentContext{
		"service": eventlog.String(cfg.ServiceName),
		"env":     eventlog.String(cfg.Env),
		"url": eventlog.Lazy(func() string {
			return a.Store.Snapshot().Location.URL()
		}),
	})

	if err := os.MkdirAll(filepath.Dir(cfg.EventDBPath), 0o755); err != nil {
		slog.Error("failed to create data dir", "path", cfg.EventDBPath, "error", err)
		os.Exit(1)
	}
	repo, err := sqlite.Open(cfg.EventDBPath)
	if err != nil {
		slog.Error("failed to open event sink", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	flushCtx, stopFlush := context.WithCancel(context.Background())
	flusher := eventlog.NewFlusher(a.Logger, repo, cfg.FlushInterval)
	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		flusher.Run(flushCtx)
	}()

	var slots locker.Locker = locker.NewMemory()
	if cfg.RedisAddr != "" {
		redisLocker := locker.NewRedis(cfg.RedisAddr, cfg.ServiceName, time.Minute)
		defer redisLocker.Close()
		slots = redisLocker
	}

	dash := newDashboard(slots, newQuoteFeed(0.3))
	if err := dash.Register(a); err != nil {
		slog.Error("failed to register module", "error", err)
		os.Exit(1)
	}
	runner, err := lifecycle.Mount(ctx, dash, map[string]any{"user": "demo", "token": "not-logged"})
	if err != nil {
		slog.Error("failed to mount module", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(a, flusher, repo)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("debug server running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	if err := runner.Unmount(shutdownCtx); err != nil {
		slog.Error("unmount failed", "error", err)
	}

	// Stop the flusher last so events logged during unmount are persisted.
	stopFlush()
	<-flushDone
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(), nil
}
