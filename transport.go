package wayfarer

import (
	"net/http"
	"strings"
)

// transport instruments outbound HTTP calls. It is an explicit decorator the
// host application constructs once (via Tracer.Transport) rather than a
// patched global: only requests matching the configured internal-API
// prefixes are traced, and the tracer's own export endpoint is always passed
// through untouched — instrumenting it would recurse.
type transport struct {
	tracer   *Tracer
	base     http.RoundTripper
	prefixes []string
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.shouldInstrument(req.URL.String()) {
		return t.roundTripper().RoundTrip(req)
	}

	ctx, span := t.tracer.StartSpan(req.Context(), "http.fetch",
		String("url", req.URL.String()),
		String("method", req.Method),
	)

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(ctx)
	req.Header.Set(TraceParentHeader, span.TraceParent())

	resp, err := t.roundTripper().RoundTrip(req)
	span.End()
	return resp, err
}

func (t *transport) roundTripper() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}

func (t *transport) shouldInstrument(url string) bool {
	if t.tracer.endpoint != "" && strings.HasPrefix(url, t.tracer.endpoint) {
		return false
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}
