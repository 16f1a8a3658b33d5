package analyses

import (
	"time"

	"legal-backend/internal/legal"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSuperseded = "superseded"
)

// Analysis is the durable record of one analysis run.
type Analysis struct {
	ID           string                `json:"id"`
	SessionID    string                `json:"sessionId"`
	DocumentID   string                `json:"documentId,omitempty"`
	OwnerID      string                `json:"-"`
	Mode         string                `json:"mode"`
	Status       string                `json:"status"`
	OverallRisk  string                `json:"overallRisk,omitempty"`
	Result       *legal.AnalysisResult `json:"result,omitempty"`
	ErrorCode    string                `json:"errorCode,omitempty"`
	ErrorMessage *string               `json:"errorMessage,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	StartedAt    *time.Time            `json:"startedAt,omitempty"`
	CompletedAt  *time.Time            `json:"completedAt,omitempty"`
}

// Terminal reports whether the record will not change again.
func (a Analysis) Terminal() bool {
	switch a.Status {
	case StatusCompleted, StatusFailed, StatusSuperseded:
		return true
	}
	return false
}

// StatusUpdate carries the fields changed by a status transition. Nil and
// empty fields are left as they are.
type StatusUpdate struct {
	Status       string
	Result       *legal.AnalysisResult
	ErrorCode    string
	ErrorMessage *string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}
