package wayfarer

import "strconv"

// OTLP-over-HTTP/JSON wire format, trimmed to the fields this tracer emits.
// Field names and encodings follow the OTLP JSON mapping: byte ids as
// lowercase hex, 64-bit integers (timestamps and intValue) as decimal
// strings.

const (
	otlpSpanKindInternal = 1
	otlpStatusCodeOK     = 1
)

type otlpExportRequest struct {
	ResourceSpans []otlpResourceSpans `json:"resourceSpans"`
}

type otlpResourceSpans struct {
	Resource   otlpResource     `json:"resource"`
	ScopeSpans []otlpScopeSpans `json:"scopeSpans"`
}

type otlpResource struct {
	Attributes []otlpKeyValue `json:"attributes"`
}

type otlpScopeSpans struct {
	Scope otlpScope  `json:"scope"`
	Spans []otlpSpan `json:"spans"`
}

type otlpScope struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type otlpSpan struct {
	TraceID           string         `json:"traceId"`
	SpanID            string         `json:"spanId"`
	ParentSpanID      string         `json:"parentSpanId,omitempty"`
	Name              string         `json:"name"`
	Kind              int            `json:"kind"`
	StartTimeUnixNano string         `json:"startTimeUnixNano"`
	EndTimeUnixNano   string         `json:"endTimeUnixNano"`
	Attributes        []otlpKeyValue `json:"attributes,omitempty"`
	Status            otlpStatus     `json:"status"`
}

type otlpKeyValue struct {
	Key   string    `json:"key"`
	Value otlpValue `json:"value"`
}

type otlpValue struct {
	StringValue *string `json:"stringValue,omitempty"`
	IntValue    *string `json:"intValue,omitempty"`
}

type otlpStatus struct {
	Code int `json:"code"`
}

func otlpStringValue(v string) otlpValue {
	return otlpValue{StringValue: &v}
}

func otlpIntValue(v int64) otlpValue {
	s := strconv.FormatInt(v, 10)
	return otlpValue{IntValue: &s}
}

func otlpAttributes(attrs []Attribute) []otlpKeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kvs := make([]otlpKeyValue, len(attrs))
	for i, a := range attrs {
		if a.isInt {
			kvs[i] = otlpKeyValue{Key: a.Key, Value: otlpIntValue(a.num)}
		} else {
			kvs[i] = otlpKeyValue{Key: a.Key, Value: otlpStringValue(a.str)}
		}
	}
	return kvs
}

func otlpFromSpan(s *Span) otlpSpan {
	out := otlpSpan{
		TraceID:           s.TraceID.String(),
		SpanID:            s.SpanID.String(),
		Name:              s.Name,
		Kind:              otlpSpanKindInternal,
		StartTimeUnixNano: strconv.FormatInt(s.StartTime.UnixNano(), 10),
		EndTimeUnixNano:   strconv.FormatInt(s.EndTime.UnixNano(), 10),
		Attributes:        otlpAttributes(s.Attributes),
		Status:            otlpStatus{Code: otlpStatusCodeOK},
	}
	if s.ParentSpanID.IsValid() {
		out.ParentSpanID = s.ParentSpanID.String()
	}
	return out
}

// buildExportRequest shapes one flushed batch into a single OTLP document:
// one resourceSpans entry, one scopeSpans entry, all spans under it.
func buildExportRequest(cfg Config, batch []*Span) otlpExportRequest {
	resAttrs := []otlpKeyValue{
		{Key: "service.name", Value: otlpStringValue(cfg.ServiceName)},
	}
	if cfg.ServiceVersion != "" {
		resAttrs = append(resAttrs, otlpKeyValue{Key: "service.version", Value: otlpStringValue(cfg.ServiceVersion)})
	}
	if cfg.Environment != "" {
		resAttrs = append(resAttrs, otlpKeyValue{Key: "deployment.environment", Value: otlpStringValue(cfg.Environment)})
	}

	spans := make([]otlpSpan, len(batch))
	for i, s := range batch {
		spans[i] = otlpFromSpan(s)
	}

	return otlpExportRequest{
		ResourceSpans: []otlpResourceSpans{{
			Resource: otlpResource{Attributes: resAttrs},
			ScopeSpans: []otlpScopeSpans{{
				Scope: otlpScope{Name: cfg.ServiceName, Version: cfg.ServiceVersion},
				Spans: spans,
			}},
		}},
	}
}
