// Package model defines the API wire types shared by the server and its clients.
package model

import "time"

// Error codes returned in API error responses.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotReady      = "NOT_READY"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta is attached to every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PlanRequest is the body of POST /api/plan.
type PlanRequest struct {
	Query string `json:"query"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Model   string `json:"model"`
}
