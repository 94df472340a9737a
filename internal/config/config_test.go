package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.TraceBatchSize != 50 {
		t.Fatalf("expected default batch size 50, got %d", cfg.TraceBatchSize)
	}
	if cfg.TraceFlushInterval != 5*time.Second {
		t.Fatalf("expected default flush interval 5s, got %s", cfg.TraceFlushInterval)
	}
	if cfg.OTLPEndpoint != "" {
		t.Fatalf("expected export disabled by default, got %q", cfg.OTLPEndpoint)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WAYFARER_PORT", "9000")
	t.Setenv("WAYFARER_TRACE_FLUSH_INTERVAL", "250ms")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318/v1/traces")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.TraceFlushInterval != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.TraceFlushInterval)
	}
	if cfg.OTLPEndpoint != "http://collector:4318/v1/traces" {
		t.Fatalf("unexpected endpoint %q", cfg.OTLPEndpoint)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bad := cfg
	bad.TraceBatchSize = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero batch size")
	}

	bad = cfg
	bad.Port = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestEnvListParsing(t *testing.T) {
	t.Setenv("WAYFARER_INTERNAL_API_PREFIXES", "http://a:1, http://b:2 ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.InternalAPIPrefixes) != 2 {
		t.Fatalf("expected 2 prefixes, got %v", cfg.InternalAPIPrefixes)
	}
	if cfg.InternalAPIPrefixes[1] != "http://b:2" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.InternalAPIPrefixes[1])
	}
}

func TestTracedPrefixesIncludeCollaborators(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	prefixes := cfg.TracedPrefixes()
	if len(prefixes) < 2 {
		t.Fatalf("expected at least LLM and tools prefixes, got %v", prefixes)
	}
	if prefixes[0] != cfg.LLMBaseURL || prefixes[1] != cfg.ToolsURL {
		t.Fatalf("unexpected prefixes %v", prefixes)
	}
}
