package model

import "time"

// AuditOutcome is the result of an audited mutation.
type AuditOutcome string

const (
	AuditSucceeded AuditOutcome = "succeeded"
	AuditFailed    AuditOutcome = "failed"
)

// AuditEvent records one mutation the console sent to the backend.
type AuditEvent struct {
	ID         int64        `json:"id,omitempty"`
	Actor      string       `json:"actor"`
	Method     string       `json:"method"`
	Resource   string       `json:"resource"`
	ResourceID string       `json:"resource_id,omitempty"`
	Outcome    AuditOutcome `json:"outcome"`
	Detail     string       `json:"detail,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
