// Command wayfarer runs the travel planner API: an SSE endpoint that streams
// multi-agent planning runs, with every LLM and tool call traced end to end.
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
	"github.com/wayfarer-ai/wayfarer/internal/llm"
	"github.com/wayfarer-ai/wayfarer/internal/planner"
	"github.com/wayfarer-ai/wayfarer/internal/server"
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
	boot := time.Now()

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configReady := time.Since(boot)

	slog.Info("wayfarer starting", "version", version, "port", cfg.Port)

	tracer, err := wayfarer.New(wayfarer.Config{
		ServiceName:    cfg.ServiceName,
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
	if cfg.OTLPEndpoint == "" {
		logger.Info("trace export: disabled (no OTEL_EXPORTER_OTLP_ENDPOINT)")
	} else {
		logger.Info("trace export: enabled", "endpoint", cfg.OTLPEndpoint)
	}

	// Shared HTTP client: LLM and tool calls go through the instrumented
	// transport so they carry trace context. Generous timeout, local model
	// inference is slow.
	httpClient := &http.Client{
		Timeout:   5 * time.Minute,
		Transport: tracer.Transport(http.DefaultTransport, cfg.TracedPrefixes()...),
	}

	llmClient := llm.New(cfg.LLMBaseURL, cfg.LLMModel, httpClient)
	toolClient := tools.NewClient(cfg.ToolsURL, httpClient)
	p := planner.New(llmClient, toolClient, tracer, logger)

	srv := server.New(server.Config{
		Planner:        p,
		Tracer:         tracer,
		Logger:         logger,
		Version:        version,
		LLMModel:       cfg.LLMModel,
		Port:           cfg.Port,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	wired := time.Since(boot)

	// Start HTTP server in background.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Record startup timing as a load span once the server is up.
	tracer.RecordLoad(ctx, wayfarer.LoadTimings{
		DOMInteractive: configReady,
		DOMComplete:    wired,
		LoadEvent:      time.Since(boot),
	})

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	// Graceful shutdown: stop accepting HTTP requests and drain in-flight
	// runs first (they may still record spans), then flush the tracer.
	slog.Info("wayfarer shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	httpCancel()

	traceCtx, traceCancel := context.WithTimeout(context.Background(), 10*time.Second)
	tracer.Shutdown(traceCtx)
	traceCancel()

	slog.Info("wayfarer stopped")
	return nil
}
