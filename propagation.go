package wayfarer

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
)

// TraceParentHeader is the W3C trace-context propagation header name.
const TraceParentHeader = "traceparent"

// traceparent format: 00-<32 hex trace id>-<16 hex span id>-<2 hex flags>.
// This tracer always emits version 00 with flags 01 (sampled).

// TraceParent renders the span's identity as a W3C traceparent value.
func (s *Span) TraceParent() string {
	return formatTraceParent(s.TraceID, s.SpanID)
}

func formatTraceParent(tid TraceID, sid SpanID) string {
	return "00-" + tid.String() + "-" + sid.String() + "-01"
}

// ParseTraceParent parses a traceparent header value. It accepts any flags
// byte but rejects unknown versions, malformed fields, and all-zero ids.
func ParseTraceParent(value string) (SpanContext, bool) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 4 {
		return SpanContext{}, false
	}
	if parts[0] != "00" || len(parts[3]) != 2 {
		return SpanContext{}, false
	}
	if len(parts[1]) != 32 || len(parts[2]) != 16 {
		return SpanContext{}, false
	}

	var sc SpanContext
	if _, err := hex.Decode(sc.TraceID[:], []byte(parts[1])); err != nil {
		return SpanContext{}, false
	}
	if _, err := hex.Decode(sc.SpanID[:], []byte(parts[2])); err != nil {
		return SpanContext{}, false
	}
	if _, err := hex.DecodeString(parts[3]); err != nil {
		return SpanContext{}, false
	}
	if !sc.IsValid() {
		return SpanContext{}, false
	}
	return sc, true
}

// Inject writes the active span context from ctx into h as a traceparent
// header. A no-op if ctx carries no valid span context.
func Inject(ctx context.Context, h http.Header) {
	sc := SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}
	h.Set(TraceParentHeader, formatTraceParent(sc.TraceID, sc.SpanID))
}

// Extract reads a traceparent header from h and returns a context carrying
// the embedded span context, so the next StartSpan creates a child of the
// remote span. Returns ctx unchanged if the header is absent or malformed.
func Extract(ctx context.Context, h http.Header) context.Context {
	sc, ok := ParseTraceParent(h.Get(TraceParentHeader))
	if !ok {
		return ctx
	}
	return ContextWithSpanContext(ctx, sc)
}
