package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	audioimpl "github.com/mindhaven/sessioncore/external/audio"
	configloader "github.com/mindhaven/sessioncore/external/config"
	connectimpl "github.com/mindhaven/sessioncore/external/connect"
	insightsimpl "github.com/mindhaven/sessioncore/external/insights"
	mediaimpl "github.com/mindhaven/sessioncore/external/media"
	storageimpl "github.com/mindhaven/sessioncore/external/storage"
	summarizerimpl "github.com/mindhaven/sessioncore/external/summarizer"
	transcriberimpl "github.com/mindhaven/sessioncore/external/transcriber"
	"github.com/mindhaven/sessioncore/internal/config"
	"github.com/mindhaven/sessioncore/internal/e2ee"
	"github.com/mindhaven/sessioncore/internal/httpapi"
	"github.com/mindhaven/sessioncore/internal/pipeline"
	"github.com/mindhaven/sessioncore/internal/session"
	"github.com/samber/do/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server", "addr", cfg.ListenAddr)
	runServer(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	insightsimpl.RegisterDI(injector)
	storageimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	mediaimpl.RegisterDI(injector)
	connectimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	summarizerimpl.RegisterDI(injector)
	e2ee.RegisterDI(injector)
	pipeline.RegisterDI(injector)
	session.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func runServer(cfg *config.Config, injector do.Injector) {
	handler, err := do.Invoke[*httpapi.Handler](injector)
	if err != nil {
		slog.Error("failed to resolve http handler", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Routes(),
	}

	done := make(chan struct{})
	go func() {
		slog.Info("startup: listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if provisioner, err := do.Invoke[*e2ee.Provisioner](injector); err == nil {
		provisioner.Close()
	}
}
