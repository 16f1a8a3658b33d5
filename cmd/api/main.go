package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legal-backend/internal/bootstrap"
	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/server"
	"legal-backend/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	// Mode is decided in the background; requests never wait on startup.
	app.Selector.Start(ctx)

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           server.Handler(cfg, app.Router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.AnalysisTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env, "provider": cfg.AnalysisProvider})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	telemetry.Info("server.shutdown", map[string]any{"timeout_ms": shutdownTimeout.Milliseconds()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err})
	}
	if err := app.Close(shutdownCtx); err != nil {
		telemetry.Error("server.drain_failed", map[string]any{"error": err})
	}
}
