package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer"
	"github.com/wayfarer-ai/wayfarer/internal/llm"
	"github.com/wayfarer-ai/wayfarer/internal/model"
	"github.com/wayfarer-ai/wayfarer/internal/planner"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTracer(t *testing.T) *wayfarer.Tracer {
	t.Helper()
	tracer, err := wayfarer.New(wayfarer.Config{ServiceName: "server-test"},
		wayfarer.WithLogger(discardLogger()))
	require.NoError(t, err)
	return tracer
}

// newAPIServer wires a full server against a stub LLM backend.
func newAPIServer(t *testing.T, llmHandler http.Handler) *httptest.Server {
	t.Helper()

	llmSrv := httptest.NewServer(llmHandler)
	t.Cleanup(llmSrv.Close)

	tracer := newTestTracer(t)
	p := planner.New(llm.New(llmSrv.URL, "test-model", nil), nil, tracer, discardLogger())

	srv := New(Config{
		Planner:        p,
		Tracer:         tracer,
		Logger:         discardLogger(),
		Version:        "test",
		LLMModel:       "test-model",
		AllowedOrigins: []string{"http://localhost:8080"},
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func okLLM() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "sounds lovely"}},
			},
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	ts := newAPIServer(t, okLLM())

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var envelope struct {
		Data model.HealthResponse `json:"data"`
		Meta map[string]any       `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "wayfarer", envelope.Data.Service)
	assert.Equal(t, "test-model", envelope.Data.Model)
	assert.NotEmpty(t, envelope.Meta["request_id"])
}

func TestPlanRejectsEmptyQuery(t *testing.T) {
	ts := newAPIServer(t, okLLM())

	resp, err := http.Post(ts.URL+"/api/plan", "application/json", strings.NewReader(`{"query":"  "}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var envelope model.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, model.ErrCodeValidation, envelope.Error.Code)
}

func TestPlanRejectsMalformedBody(t *testing.T) {
	ts := newAPIServer(t, okLLM())

	resp, err := http.Post(ts.URL+"/api/plan", "application/json", strings.NewReader(`{"quer`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlanStreamsEventsInOrder(t *testing.T) {
	ts := newAPIServer(t, okLLM())

	resp, err := http.Post(ts.URL+"/api/plan", "application/json",
		strings.NewReader(`{"query":"two days in Rome"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(body)

	var types []string
	for _, line := range strings.Split(stream, "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			types = append(types, name)
		}
	}
	assert.Equal(t, []string{
		"status",
		"agent_started", "agent_completed", "message",
		"agent_started", "agent_completed", "message",
		"agent_started", "agent_completed", "message",
		"output",
		"done",
	}, types)

	assert.Contains(t, stream, "sounds lovely")
	assert.Contains(t, stream, `"agent_count":3`)
}

func TestPlanStreamsErrorEvent(t *testing.T) {
	ts := newAPIServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model fell over", http.StatusInternalServerError)
	}))

	resp, err := http.Post(ts.URL+"/api/plan", "application/json",
		strings.NewReader(`{"query":"anywhere warm"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// Stream was already started, so the failure arrives as an SSE event.
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(body)

	assert.Contains(t, stream, "event: error")
	assert.Contains(t, stream, "Workflow failed")
	assert.NotContains(t, stream, "event: done")
}

func TestCORSPreflightAndHeaders(t *testing.T) {
	ts := newAPIServer(t, okLLM())

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/plan", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8080")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))

	// Unknown origins get no CORS headers.
	req2, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	require.NoError(t, err)
	req2.Header.Set("Origin", "http://evil.example")

	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	_ = resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddlewareConvertsPanics(t *testing.T) {
	handler := recoveryMiddleware(discardLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, model.ErrCodeInternalError, envelope.Error.Code)
}

func TestRequestIDIsEchoedAndReused(t *testing.T) {
	ts := newAPIServer(t, okLLM())

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	var envelope struct {
		Meta model.ResponseMeta `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "req-123", envelope.Meta.RequestID)
	assert.WithinDuration(t, time.Now(), envelope.Meta.Timestamp, time.Minute)
}
