package intake

import (
	"time"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
)

// SessionResponse is the outward-facing representation of a session.
type SessionResponse struct {
	SessionID  string                `json:"sessionId"`
	State      State                 `json:"state"`
	Mode       provider.Mode         `json:"mode"`
	AnalysisID string                `json:"analysisId,omitempty"`
	File       *FileInfo             `json:"file"`
	Result     *legal.AnalysisResult `json:"result"`
	Error      *Failure              `json:"error"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

type modeResponse struct {
	Mode provider.Mode `json:"mode"`
	Demo bool          `json:"demo"`
}

func toResponse(snap Snapshot, mode provider.Mode) SessionResponse {
	return SessionResponse{
		SessionID:  snap.ID,
		State:      snap.State,
		Mode:       mode,
		AnalysisID: snap.AnalysisID,
		File:       snap.File,
		Result:     snap.Result,
		Error:      snap.Failure,
		UpdatedAt:  snap.UpdatedAt,
	}
}
