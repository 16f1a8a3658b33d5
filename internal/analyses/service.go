package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"legal-backend/internal/intake"
	"legal-backend/internal/legal"
	"legal-backend/internal/queue"
	"legal-backend/internal/shared/telemetry"
)

// Service keeps analysis records and announces terminal outcomes on the queue.
type Service struct {
	Repo  Repo
	Queue queue.Client
	now   func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Enqueue records a queued analysis for a session and returns its ID.
func (s *Service) Enqueue(ctx context.Context, sessionID, documentID, ownerID, mode string) (string, error) {
	if sessionID == "" || ownerID == "" {
		return "", errors.New("sessionID and ownerID are required")
	}
	analysis := Analysis{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		DocumentID: documentID,
		OwnerID:    ownerID,
		Mode:       mode,
		Status:     StatusQueued,
		CreatedAt:  s.clock(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return "", fmt.Errorf("create analysis: %w", err)
	}
	return analysis.ID, nil
}

// MarkProcessing moves a queued analysis to processing.
func (s *Service) MarkProcessing(ctx context.Context, analysisID string) error {
	startedAt := s.clock()
	return s.Repo.UpdateStatus(ctx, analysisID, StatusUpdate{Status: StatusProcessing, StartedAt: &startedAt})
}

// Complete stores the result and notifies downstream consumers.
func (s *Service) Complete(ctx context.Context, analysisID string, result legal.AnalysisResult) error {
	completedAt := s.clock()
	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusUpdate{
		Status:      StatusCompleted,
		Result:      &result,
		CompletedAt: &completedAt,
	}); err != nil {
		return err
	}
	s.notify(ctx, analysisID)
	return nil
}

// Fail records why an analysis did not complete.
func (s *Service) Fail(ctx context.Context, analysisID string, cause error) error {
	completedAt := s.clock()
	status := StatusFailed
	if errors.Is(cause, intake.ErrSuperseded) {
		status = StatusSuperseded
	}
	msg := "analysis failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusUpdate{
		Status:       status,
		ErrorCode:    errorCode(cause),
		ErrorMessage: &msg,
		CompletedAt:  &completedAt,
	}); err != nil {
		return err
	}
	s.notify(ctx, analysisID)
	return nil
}

// Get returns an analysis owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, errors.New("analysisID is required")
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.OwnerID != ownerID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// List returns analyses for an owner ordered newest-first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID is required")
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) notify(ctx context.Context, analysisID string) {
	if s.Queue == nil {
		return
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		telemetry.Warn("analysis.notify_failed", map[string]any{"analysis_id": analysisID, "error": err})
		return
	}
	msg := queue.Message{
		AnalysisID:  a.ID,
		SessionID:   a.SessionID,
		DocumentID:  a.DocumentID,
		Status:      a.Status,
		Mode:        a.Mode,
		OverallRisk: a.OverallRisk,
		Version:     queue.MessageVersion,
	}
	if a.CompletedAt != nil {
		msg.CompletedAt = a.CompletedAt.UTC().Format(time.RFC3339)
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Warn("analysis.notify_failed", map[string]any{"analysis_id": analysisID, "error": err})
		return
	}
	telemetry.Info("analysis.notified", map[string]any{"analysis_id": analysisID, "status": a.Status})
}

var _ intake.Recorder = (*Service)(nil)
