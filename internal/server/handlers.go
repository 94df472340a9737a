package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wayfarer-ai/wayfarer/internal/model"
	"github.com/wayfarer-ai/wayfarer/internal/planner"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	planner   *planner.Planner
	logger    *slog.Logger
	version   string
	modelName string
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.planner == nil {
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeNotReady, "planner not initialized")
		return
	}
	writeJSON(w, r, http.StatusOK, model.HealthResponse{
		Status:  "healthy",
		Service: "wayfarer",
		Version: h.version,
		Model:   h.modelName,
	})
}

// HandlePlan handles POST /api/plan: it runs the planning pipeline and
// streams progress to the client as Server-Sent Events.
func (h *Handlers) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var req model.PlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeValidation, "query must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Disable the server's WriteTimeout for this long-lived connection.
	// Local model inference can easily outlast the default 30s.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	emit := func(e model.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			h.logger.Error("marshal event", "error", err)
			return
		}
		if _, err := w.Write(formatSSE(string(e.Type), string(data))); err != nil {
			return
		}
		flusher.Flush()
	}

	if err := h.planner.Run(r.Context(), query, emit); err != nil {
		h.logger.Error("planning run failed",
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
		emit(model.Event{Type: model.EventError, Error: err.Error(), Message: "Workflow failed"})
		return
	}

	emit(model.Event{Type: model.EventDone, Message: "Stream complete"})
}

// formatSSE formats one Server-Sent Events message.
func formatSSE(eventType, data string) []byte {
	// SSE format: "event: <type>\ndata: <payload>\n\n"
	return []byte("event: " + eventType + "\ndata: " + data + "\n\n")
}
