package wayfarer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// headerRecorder captures the traceparent header of each request it serves.
type headerRecorder struct {
	srv *httptest.Server

	mu      sync.Mutex
	headers []string
}

func newHeaderRecorder(t *testing.T) *headerRecorder {
	t.Helper()
	rec := &headerRecorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.headers = append(rec.headers, r.Header.Get(TraceParentHeader))
		rec.mu.Unlock()
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *headerRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.headers) == 0 {
		return ""
	}
	return r.headers[len(r.headers)-1]
}

func TestTransportInjectsTraceParentOnInternalCalls(t *testing.T) {
	rec := newHeaderRecorder(t)
	tr := newTestTracer(t)
	client := &http.Client{Transport: tr.Transport(nil, rec.srv.URL)}

	resp, err := client.Get(rec.srv.URL + "/v1/thing")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Regexp(t, "^00-[0-9a-f]{32}-[0-9a-f]{16}-01$", rec.last())

	// Exactly one http.fetch span was recorded and ended.
	require.Equal(t, 1, tr.exporter.len())
	s := tr.exporter.spans[0]
	assert.Equal(t, "http.fetch", s.Name)
	assert.True(t, s.Ended())

	attrs := map[string]any{}
	for _, a := range s.Attributes {
		attrs[a.Key] = a.Value()
	}
	assert.Equal(t, rec.srv.URL+"/v1/thing", attrs["url"])
	assert.Equal(t, http.MethodGet, attrs["method"])

	// The injected header names the span that wrapped the call.
	assert.True(t, strings.Contains(rec.last(), s.SpanID.String()))
}

func TestTransportSkipsNonInternalCalls(t *testing.T) {
	rec := newHeaderRecorder(t)
	tr := newTestTracer(t)
	client := &http.Client{Transport: tr.Transport(nil, "http://internal.api.example")}

	resp, err := client.Get(rec.srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Empty(t, rec.last())
	assert.Equal(t, 0, tr.exporter.len())
}

func TestTransportNeverInstrumentsExportEndpoint(t *testing.T) {
	rec := newHeaderRecorder(t)
	tr, err := New(Config{ServiceName: "test-svc", Endpoint: rec.srv.URL + "/v1/traces"})
	require.NoError(t, err)

	// Even when the export endpoint matches an instrumented prefix, it must
	// be passed through untouched — instrumenting it would recurse.
	client := &http.Client{Transport: tr.Transport(nil, rec.srv.URL)}
	resp, err := client.Get(rec.srv.URL + "/v1/traces")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Empty(t, rec.last())
	assert.Equal(t, 0, tr.exporter.len())
}

func TestTransportLinksChildToCallerSpan(t *testing.T) {
	rec := newHeaderRecorder(t)
	tr := newTestTracer(t)
	client := &http.Client{Transport: tr.Transport(nil, rec.srv.URL)}

	ctx, parent := tr.StartSpan(context.Background(), "workflow")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	parent.End()

	require.Equal(t, 2, tr.exporter.len())
	fetch := tr.exporter.spans[0]
	assert.Equal(t, parent.TraceID, fetch.TraceID)
	assert.Equal(t, parent.SpanID, fetch.ParentSpanID)

	sc, ok := ParseTraceParent(rec.last())
	require.True(t, ok)
	assert.Equal(t, fetch.SpanID, sc.SpanID)
}

type failingRoundTripper struct{}

func (failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportForwardsErrorsUnchangedAndEndsSpan(t *testing.T) {
	tr := newTestTracer(t)
	rt := tr.Transport(failingRoundTripper{}, "http://internal.api.example")

	req, err := http.NewRequest(http.MethodGet, "http://internal.api.example/x", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	// The span still ends (with status OK — no error propagation) and the
	// original request was not mutated.
	require.Equal(t, 1, tr.exporter.len())
	assert.True(t, tr.exporter.spans[0].Ended())
	assert.Empty(t, req.Header.Get(TraceParentHeader))
}
