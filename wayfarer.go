// Package wayfarer is a small client-side distributed tracer.
//
// It creates spans, propagates trace context across process boundaries using
// the W3C traceparent convention, and exports finished spans to a collector
// in batches using the OTLP-over-HTTP/JSON wire format. The package is
// deliberately dependency-free: the wire codec and propagation logic are the
// point of the package, not something to delegate to a full tracing SDK.
//
// Telemetry is strictly best-effort. Span creation and completion cannot
// fail, and a failed export is logged and dropped — it never surfaces as an
// error to the application.
package wayfarer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Default flush triggers for the export buffer.
const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 5 * time.Second
)

// Config holds the settings needed to construct a Tracer.
type Config struct {
	// ServiceName identifies this service in exported resource attributes.
	ServiceName string

	// ServiceVersion is reported alongside ServiceName. Optional.
	ServiceVersion string

	// Environment becomes the deployment.environment resource attribute.
	// Optional.
	Environment string

	// Endpoint is the collector URL span batches are POSTed to
	// (e.g. "http://localhost:4318/v1/traces"). If empty, spans are
	// recorded and then discarded at flush time.
	Endpoint string
}

// Tracer records spans and exports them in batches.
// All methods are safe for concurrent use.
type Tracer struct {
	serviceName string
	endpoint    string
	logger      *slog.Logger
	exporter    *exporter
}

// New creates a Tracer from the given configuration.
// Call Start to begin the periodic flush loop and Shutdown to flush on
// teardown. Returns an error if ServiceName is empty.
func New(cfg Config, opts ...Option) (*Tracer, error) {
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("wayfarer: ServiceName is required")
	}

	o := resolveOptions(opts)

	return &Tracer{
		serviceName: cfg.ServiceName,
		endpoint:    cfg.Endpoint,
		logger:      o.logger,
		exporter:    newExporter(cfg, o),
	}, nil
}

// Start begins the background flush loop. The loop flushes the export buffer
// every flush interval regardless of how full it is; a flush of an empty
// buffer is a no-op. Start is idempotent.
func (t *Tracer) Start(ctx context.Context) {
	t.exporter.start(ctx)
}

// StartSpan begins a new span named name.
//
// The parent is taken from ctx: if ctx carries a span context (from an
// earlier StartSpan or from Extract), the new span joins that trace as a
// child; otherwise a fresh trace id is generated and the span is a root.
// The returned context carries the new span's context for use by nested
// operations. Attributes are fixed at creation.
//
// The caller must call End on the returned span; a span that is never ended
// is never exported.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, *Span) {
	parent := SpanContextFromContext(ctx)

	s := &Span{
		SpanID:     newSpanID(),
		Name:       name,
		StartTime:  time.Now(),
		Attributes: append([]Attribute(nil), attrs...),
		tracer:     t,
	}
	if parent.IsValid() {
		s.TraceID = parent.TraceID
		s.ParentSpanID = parent.SpanID
	} else {
		s.TraceID = newTraceID()
	}

	return ContextWithSpanContext(ctx, SpanContext{TraceID: s.TraceID, SpanID: s.SpanID}), s
}

// LoadTimings carries page/process load milestones for RecordLoad.
// A zero value means the timing facility had no data for that milestone.
type LoadTimings struct {
	DOMInteractive time.Duration
	DOMComplete    time.Duration
	LoadEvent      time.Duration
}

// RecordLoad emits a single already-ended "document.load" span carrying the
// given load milestones as millisecond attributes. The span does not cover
// real wall time: it is an atomic start+end marker.
func (t *Tracer) RecordLoad(ctx context.Context, lt LoadTimings) {
	_, s := t.StartSpan(ctx, "document.load",
		Int64("dom_interactive_ms", lt.DOMInteractive.Milliseconds()),
		Int64("dom_complete_ms", lt.DOMComplete.Milliseconds()),
		Int64("load_event_ms", lt.LoadEvent.Milliseconds()),
	)
	s.End()
}

// Transport returns an http.RoundTripper that instruments outbound requests
// whose URL matches one of the given internal-API prefixes: each matching
// request gets an "http.fetch" span and a traceparent header. Requests to
// the tracer's own export endpoint are never instrumented. A nil base means
// http.DefaultTransport.
func (t *Tracer) Transport(base http.RoundTripper, prefixes ...string) http.RoundTripper {
	return &transport{tracer: t, base: base, prefixes: prefixes}
}

// Flush drains the export buffer and transmits the drained batch without
// waiting for the transmission to complete. A no-op if the buffer is empty.
func (t *Tracer) Flush() {
	t.exporter.flush()
}

// Shutdown stops the flush loop, performs a final synchronous flush, and
// waits — bounded by ctx — for in-flight transmissions to finish. Spans
// ended after Shutdown returns are silently dropped.
func (t *Tracer) Shutdown(ctx context.Context) {
	t.exporter.shutdown(ctx)
}
