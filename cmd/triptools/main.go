// Command triptools runs the mock travel tool server: canned weather,
// attraction, and currency data over JSON endpoints and MCP. Incoming
// requests that carry trace context are recorded as child spans.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wayfarer-ai/wayfarer"
	"github.com/wayfarer-ai/wayfarer/internal/config"
	"github.com/wayfarer-ai/wayfarer/internal/tools"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("WAYFARER_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("triptools starting", "version", version, "port", cfg.ToolsPort)

	tracer, err := wayfarer.New(wayfarer.Config{
		ServiceName:    "triptools",
		ServiceVersion: version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
	},
		wayfarer.WithLogger(logger),
		wayfarer.WithBatchSize(cfg.TraceBatchSize),
		wayfarer.WithFlushInterval(cfg.TraceFlushInterval),
	)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	tracer.Start(ctx)

	toolSrv := tools.NewServer(tracer, logger)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ToolsPort),
		Handler:      toolSrv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tool server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("triptools shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpServer.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	httpCancel()

	traceCtx, traceCancel := context.WithTimeout(context.Background(), 10*time.Second)
	tracer.Shutdown(traceCtx)
	traceCancel()

	slog.Info("triptools stopped")
	return nil
}
