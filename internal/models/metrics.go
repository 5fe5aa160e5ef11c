package models

import "time"

// SystemMetrics is a lightweight snapshot of in-process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	InspectionsCreated       uint64    `json:"inspections_created"`
	StatusTransitions        uint64    `json:"status_transitions"`
	FeedbackSubmitted        uint64    `json:"feedback_submitted"`
	SignInSuccess            uint64    `json:"sign_in_success"`
	SignInFailure            uint64    `json:"sign_in_failure"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
