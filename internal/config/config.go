// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// API server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Tool server settings.
	ToolsPort int
	ToolsURL  string // Base URL the planner uses to reach the tool server.

	// LLM runtime settings (OpenAI-compatible chat completions endpoint,
	// e.g. a local FoundryLocal or Ollama server).
	LLMBaseURL string
	LLMModel   string

	// Tracing settings.
	OTLPEndpoint       string // Collector URL for span export; empty disables export.
	ServiceName        string
	Environment        string        // deployment.environment resource attribute
	TraceBatchSize     int           // Capacity flush trigger.
	TraceFlushInterval time.Duration // Periodic flush trigger.

	// Extra URL prefixes to instrument on outbound calls, beyond the LLM
	// and tool server bases.
	InternalAPIPrefixes []string

	// Operational settings.
	LogLevel           string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                envInt("WAYFARER_PORT", 8000),
		ReadTimeout:         envDuration("WAYFARER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("WAYFARER_WRITE_TIMEOUT", 30*time.Second),
		ToolsPort:           envInt("WAYFARER_TOOLS_PORT", 8001),
		ToolsURL:            envStr("WAYFARER_TOOLS_URL", "http://localhost:8001"),
		LLMBaseURL:          envStr("WAYFARER_LLM_URL", "http://localhost:5273/v1"),
		LLMModel:            envStr("WAYFARER_LLM_MODEL", "phi-3.5-mini-instruct"),
		OTLPEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "wayfarer"),
		Environment:         envStr("WAYFARER_ENVIRONMENT", "development"),
		TraceBatchSize:      envInt("WAYFARER_TRACE_BATCH_SIZE", 50),
		TraceFlushInterval:  envDuration("WAYFARER_TRACE_FLUSH_INTERVAL", 5*time.Second),
		InternalAPIPrefixes: envList("WAYFARER_INTERNAL_API_PREFIXES", nil),
		LogLevel:            envStr("WAYFARER_LOG_LEVEL", "info"),
		CORSAllowedOrigins: envList("WAYFARER_CORS_ORIGINS",
			[]string{"http://localhost:8080", "http://localhost:3000"}),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: WAYFARER_PORT must be a valid TCP port")
	}
	if c.ToolsPort <= 0 || c.ToolsPort > 65535 {
		return fmt.Errorf("config: WAYFARER_TOOLS_PORT must be a valid TCP port")
	}
	if c.LLMBaseURL == "" {
		return fmt.Errorf("config: WAYFARER_LLM_URL is required")
	}
	if c.TraceBatchSize <= 0 {
		return fmt.Errorf("config: WAYFARER_TRACE_BATCH_SIZE must be positive")
	}
	if c.TraceFlushInterval <= 0 {
		return fmt.Errorf("config: WAYFARER_TRACE_FLUSH_INTERVAL must be positive")
	}
	return nil
}

// TracedPrefixes returns every outbound URL prefix the instrumented HTTP
// client should trace: the LLM runtime, the tool server, and any extras.
func (c Config) TracedPrefixes() []string {
	prefixes := []string{c.LLMBaseURL, c.ToolsURL}
	return append(prefixes, c.InternalAPIPrefixes...)
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
