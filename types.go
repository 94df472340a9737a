package wayfarer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// TraceID is a 16-byte identifier shared by every span in one logical
// end-to-end operation. Rendered as 32 lowercase hex characters.
type TraceID [16]byte

// String renders the trace id as 32 lowercase hex characters.
func (t TraceID) String() string { return hex.EncodeToString(t[:]) }

// IsValid reports whether the trace id is non-zero.
func (t TraceID) IsValid() bool { return t != TraceID{} }

// SpanID is an 8-byte identifier unique within a trace.
// Rendered as 16 lowercase hex characters.
type SpanID [8]byte

// String renders the span id as 16 lowercase hex characters.
func (s SpanID) String() string { return hex.EncodeToString(s[:]) }

// IsValid reports whether the span id is non-zero.
func (s SpanID) IsValid() bool { return s != SpanID{} }

func newTraceID() TraceID {
	var id TraceID
	for !id.IsValid() {
		_, _ = rand.Read(id[:])
	}
	return id
}

func newSpanID() SpanID {
	var id SpanID
	for !id.IsValid() {
		_, _ = rand.Read(id[:])
	}
	return id
}

// Attribute is a single key/value pair on a span. Values are either strings
// or 64-bit integers on the wire; anything else is coerced to its string
// representation at construction time, never rejected.
type Attribute struct {
	Key string

	str   string
	num   int64
	isInt bool
}

// String returns a string-valued attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, str: value}
}

// Int returns an integer-valued attribute.
func Int(key string, value int) Attribute {
	return Int64(key, int64(value))
}

// Int64 returns an integer-valued attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, num: value, isInt: true}
}

// Attr returns an attribute for an arbitrary value. Strings and integer
// kinds keep their type; every other value is stringified.
func Attr(key string, value any) Attribute {
	switch v := value.(type) {
	case string:
		return String(key, v)
	case int:
		return Int64(key, int64(v))
	case int32:
		return Int64(key, int64(v))
	case int64:
		return Int64(key, v)
	case uint:
		return Int64(key, int64(v))
	case uint32:
		return Int64(key, int64(v))
	default:
		return String(key, fmt.Sprint(v))
	}
}

// Value returns the attribute value as a string or int64.
func (a Attribute) Value() any {
	if a.isInt {
		return a.num
	}
	return a.str
}

// Span is a timed record of one operation. Identity fields and attributes
// are fixed at creation; EndTime is set by End, after which the span is
// immutable and queued for export.
//
// Every span has kind "internal" and status OK — this tracer does not
// distinguish server/client/producer/consumer spans and does not propagate
// error status from instrumentation.
type Span struct {
	TraceID      TraceID
	SpanID       SpanID
	ParentSpanID SpanID // zero for a root span
	Name         string
	StartTime    time.Time
	EndTime      time.Time
	Attributes   []Attribute

	tracer *Tracer
	ended  atomic.Bool
}

// End finalizes the span and appends it to the export buffer. The first call
// wins; subsequent calls are no-ops, so a span is enqueued at most once.
func (s *Span) End() {
	if !s.ended.CompareAndSwap(false, true) {
		return
	}
	s.EndTime = time.Now()
	if s.EndTime.Before(s.StartTime) {
		s.EndTime = s.StartTime
	}
	if s.tracer != nil {
		s.tracer.exporter.enqueue(s)
	}
}

// Ended reports whether End has been called.
func (s *Span) Ended() bool { return s.ended.Load() }

// SpanContext is the immutable identity of a span, carried through
// context.Context so nested operations — including ones running in
// concurrent goroutines — link to the correct parent.
type SpanContext struct {
	TraceID TraceID
	SpanID  SpanID
}

// IsValid reports whether both ids are non-zero.
func (sc SpanContext) IsValid() bool {
	return sc.TraceID.IsValid() && sc.SpanID.IsValid()
}

type spanContextKey struct{}

// ContextWithSpanContext returns a context carrying sc as the active span.
func ContextWithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanContextKey{}, sc)
}

// SpanContextFromContext extracts the active span context, or a zero
// SpanContext if the context carries none.
func SpanContextFromContext(ctx context.Context) SpanContext {
	if sc, ok := ctx.Value(spanContextKey{}).(SpanContext); ok {
		return sc
	}
	return SpanContext{}
}
