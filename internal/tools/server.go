package tools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wayfarer-ai/wayfarer"
)

// Server serves the travel tools over plain JSON and over MCP.
type Server struct {
	tracer    *wayfarer.Tracer
	logger    *slog.Logger
	mcpServer *mcpserver.MCPServer
}

// NewServer creates a tool server. Incoming requests that carry a traceparent
// header are recorded as child spans of the caller's trace.
func NewServer(tracer *wayfarer.Tracer, logger *slog.Logger) *Server {
	s := &Server{
		tracer: tracer,
		logger: logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"triptools",
		"0.1.0",
		mcpserver.WithToolCapabilities(true),
	)
	s.registerTools()

	return s
}

// Handler returns the HTTP handler tree: JSON tool endpoints, a health probe,
// and the MCP StreamableHTTP transport at /mcp.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /tools/weather", s.handleWeather)
	mux.HandleFunc("GET /tools/attractions", s.handleAttractions)
	mux.HandleFunc("GET /tools/currency", s.handleCurrency)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcpServer))

	return s.traceMiddleware(mux)
}

// traceMiddleware continues the caller's trace: it reads the traceparent
// header and records one span per tool request, parented to the caller's
// span when the header is present.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := wayfarer.Extract(r.Context(), r.Header)
		ctx, span := s.tracer.StartSpan(ctx, spanName(r.URL.Path),
			wayfarer.String("http.method", r.Method),
			wayfarer.String("http.path", r.URL.Path),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func spanName(path string) string {
	if name, ok := strings.CutPrefix(path, "/tools/"); ok && name != "" {
		return "tool." + name
	}
	return "http.request"
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		s.writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	report, ok := lookupWeather(city)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no weather data for city: "+city)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAttractions(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		s.writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	list, ok := lookupAttractions(city)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no attraction data for city: "+city)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"city":        city,
		"attractions": list,
	})
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		s.writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	amount := 1.0
	if raw := q.Get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "amount must be a non-negative number")
			return
		}
		amount = parsed
	}

	result, ok := convert(from, to, amount)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unsupported currency pair: "+from+"/"+to)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("tools: write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
