package model

// EventType labels one progress event in a planning run's SSE stream.
type EventType string

const (
	EventStatus         EventType = "status"
	EventAgentStarted   EventType = "agent_started"
	EventAgentCompleted EventType = "agent_completed"
	EventMessage        EventType = "message"
	EventOutput         EventType = "output"
	EventError          EventType = "error"
	EventDone           EventType = "done"
)

// Event is one progress event emitted while a planning run executes.
// Exactly which fields are set depends on Type.
type Event struct {
	Type    EventType `json:"-"`
	Message string    `json:"message,omitempty"`
	Agent   string    `json:"agent,omitempty"`
	Text    string    `json:"text,omitempty"`

	// Output summary fields, set on EventOutput.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	AgentCount      int     `json:"agent_count,omitempty"`

	// Error detail, set on EventError.
	Error string `json:"error,omitempty"`
}
