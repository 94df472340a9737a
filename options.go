package wayfarer

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Tracer.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	logger        *slog.Logger
	httpClient    *http.Client
	batchSize     int
	flushInterval time.Duration
}

func resolveOptions(opts []Option) resolvedOptions {
	o := resolvedOptions{
		logger:        slog.Default(),
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		batchSize:     DefaultBatchSize,
		flushInterval: DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the structured logger used for export warnings.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithHTTPClient replaces the HTTP client used to POST span batches to the
// collector. The client must not itself be instrumented by this tracer.
func WithHTTPClient(client *http.Client) Option {
	return func(o *resolvedOptions) { o.httpClient = client }
}

// WithBatchSize overrides the capacity flush trigger (default 50).
// The buffer is drained as soon as it reaches this many finished spans.
func WithBatchSize(n int) Option {
	return func(o *resolvedOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithFlushInterval overrides the periodic flush trigger (default 5s).
func WithFlushInterval(d time.Duration) Option {
	return func(o *resolvedOptions) {
		if d > 0 {
			o.flushInterval = d
		}
	}
}
