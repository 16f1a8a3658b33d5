package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/telemetry"
)

const DefaultMaxUploadBytes int64 = 10 << 20 // 10MB

var ErrServiceClosed = errors.New("intake service is shutting down")

// DocumentSink persists accepted uploads and returns their document ID.
type DocumentSink interface {
	Save(ctx context.Context, ownerID, fileName, contentType string, content []byte) (string, error)
}

// Recorder keeps a durable record of each analysis run.
type Recorder interface {
	Enqueue(ctx context.Context, sessionID, documentID, ownerID, mode string) (string, error)
	MarkProcessing(ctx context.Context, analysisID string) error
	Complete(ctx context.Context, analysisID string, result legal.AnalysisResult) error
	Fail(ctx context.Context, analysisID string, cause error) error
}

// ModeSource reports whether analyses run live or against the demo provider.
// Wait blocks until the startup health probe has decided.
type ModeSource interface {
	Mode() provider.Mode
	Wait(ctx context.Context) (provider.Mode, error)
}

// Service coordinates sessions, uploads and analyses.
type Service struct {
	Sessions        SessionStore
	Provider        provider.Provider
	Modes           ModeSource
	Documents       DocumentSink
	Recorder        Recorder
	MaxUploadBytes  int64
	AnalysisTimeout time.Duration

	initOnce sync.Once
	root     context.Context
	stop     context.CancelFunc

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func (s *Service) init() {
	s.initOnce.Do(func() {
		s.root, s.stop = context.WithCancel(context.Background())
		if s.Sessions == nil {
			s.Sessions = NewMemoryStore()
		}
	})
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// Mode returns the current provider mode.
func (s *Service) Mode() provider.Mode {
	if s.Modes == nil {
		return provider.ModeUnknown
	}
	return s.Modes.Mode()
}

// resolvedMode waits for the startup probe so records never carry "unknown"
// for an analysis a real provider serves. If ctx ends first the current mode is used.
func (s *Service) resolvedMode(ctx context.Context) provider.Mode {
	if s.Modes == nil {
		return provider.ModeUnknown
	}
	mode, err := s.Modes.Wait(ctx)
	if err != nil {
		return s.Modes.Mode()
	}
	return mode
}

// CreateSession starts an idle session for ownerID.
func (s *Service) CreateSession(ctx context.Context, ownerID string) (Snapshot, error) {
	s.init()
	if ownerID == "" {
		return Snapshot{}, errors.New("ownerID is required")
	}
	sess := NewSession(uuid.NewString(), ownerID)
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return Snapshot{}, err
	}
	telemetry.Info("session.created", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"session_id": sess.ID(),
		"user_id":    ownerID,
	})
	return sess.Snapshot(), nil
}

// Get returns the session snapshot.
func (s *Service) Get(ctx context.Context, ownerID, sessionID string) (Snapshot, error) {
	s.init()
	sess, err := s.Sessions.Get(ctx, ownerID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Delete cancels any running analysis and forgets the session.
func (s *Service) Delete(ctx context.Context, ownerID, sessionID string) error {
	s.init()
	sess, err := s.Sessions.Get(ctx, ownerID, sessionID)
	if err != nil {
		return err
	}
	sess.Cancel()
	return s.Sessions.Delete(ctx, ownerID, sessionID)
}

// Submit selects a file for the session. Rejected files leave the session as it was.
func (s *Service) Submit(ctx context.Context, ownerID, sessionID string, f File) (Snapshot, error) {
	s.init()
	sess, err := s.Sessions.Get(ctx, ownerID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	if int64(len(f.Content)) > s.maxUploadBytes() {
		metrics.IncInvalidFile()
		return sess.Snapshot(), fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxUploadBytes())
	}
	effective, err := DetectFileType(f.Name, f.ContentType, f.Content)
	if err != nil {
		metrics.IncInvalidFile()
		telemetry.Info("session.file_rejected", map[string]any{
			"request_id":   requestIDFromContext(ctx),
			"session_id":   sess.ID(),
			"file_name":    f.Name,
			"content_type": f.ContentType,
			"error":        err,
		})
		return sess.Snapshot(), err
	}
	f.ContentType = effective

	if s.Documents != nil {
		docID, err := s.Documents.Save(ctx, ownerID, f.Name, f.ContentType, f.Content)
		if err != nil {
			return sess.Snapshot(), fmt.Errorf("store document: %w", err)
		}
		f.DocumentID = docID
	}

	prev, err := sess.Submit(f)
	if err != nil {
		return sess.Snapshot(), err
	}
	snap := sess.Snapshot()
	logTransition(ctx, snap, prev, StateFileSelected, nil)
	return snap, nil
}

// StartAnalysis claims the session and analyses its file in the background.
func (s *Service) StartAnalysis(ctx context.Context, ownerID, sessionID string) (Snapshot, error) {
	s.init()
	runCtx := carryRequestID(s.root, ctx)
	sess, a, err := s.begin(ctx, ownerID, sessionID, runCtx)
	if err != nil {
		return snapshotOf(sess), err
	}

	analysisID := s.record(ctx, sess, a)
	snap := sess.Snapshot()

	go func() {
		defer s.wg.Done()
		_, _ = s.execute(runCtx, sess, a, analysisID)
	}()
	return snap, nil
}

// RunAnalysis analyses the session's file and waits for the outcome.
func (s *Service) RunAnalysis(ctx context.Context, ownerID, sessionID string) (Snapshot, error) {
	s.init()
	sess, a, err := s.begin(ctx, ownerID, sessionID, ctx)
	if err != nil {
		return snapshotOf(sess), err
	}
	defer s.wg.Done()

	analysisID := s.record(ctx, sess, a)
	_, err = s.execute(ctx, sess, a, analysisID)
	return sess.Snapshot(), err
}

// AnalyzeDocument runs a one-off analysis outside any session.
func (s *Service) AnalyzeDocument(ctx context.Context, f File) (legal.AnalysisResult, error) {
	s.init()
	if int64(len(f.Content)) > s.maxUploadBytes() {
		return legal.AnalysisResult{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxUploadBytes())
	}
	effective, err := DetectFileType(f.Name, f.ContentType, f.Content)
	if err != nil {
		metrics.IncInvalidFile()
		return legal.AnalysisResult{}, err
	}
	if s.Provider == nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: no provider configured", provider.ErrAnalysisUnavailable)
	}

	sess := NewSession(uuid.NewString(), "")
	if _, err := sess.Submit(File{Name: f.Name, ContentType: effective, Content: f.Content}); err != nil {
		return legal.AnalysisResult{}, err
	}
	a, err := sess.Begin(ctx, s.AnalysisTimeout)
	if err != nil {
		return legal.AnalysisResult{}, err
	}

	start := time.Now()
	metrics.IncAnalysisStarted()
	res, err := a.Run(s.Provider)
	metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"file_name":  f.Name,
			"error":      err,
		})
		return legal.AnalysisResult{}, err
	}
	metrics.IncAnalysisCompleted()
	return res, nil
}

// Shutdown cancels analyses in flight and waits for them to settle.
func (s *Service) Shutdown(ctx context.Context) error {
	s.init()
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin claims a session under parent. On success the caller owns one wg slot.
func (s *Service) begin(ctx context.Context, ownerID, sessionID string, parent context.Context) (*Session, *Attempt, error) {
	sess, err := s.Sessions.Get(ctx, ownerID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if s.Provider == nil {
		return sess, nil, fmt.Errorf("%w: no provider configured", provider.ErrAnalysisUnavailable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return sess, nil, ErrServiceClosed
	}
	a, err := sess.Begin(parent, s.AnalysisTimeout)
	if err != nil {
		return sess, nil, err
	}
	s.wg.Add(1)
	return sess, a, nil
}

func (s *Service) record(ctx context.Context, sess *Session, a *Attempt) string {
	if s.Recorder == nil {
		return ""
	}
	id, err := s.Recorder.Enqueue(ctx, sess.ID(), a.DocumentID(), sess.Owner(), string(s.resolvedMode(ctx)))
	if err != nil {
		telemetry.Warn("analysis.record_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"session_id": sess.ID(),
			"error":      err,
		})
		return ""
	}
	a.SetAnalysisID(id)
	return id
}

func (s *Service) execute(ctx context.Context, sess *Session, a *Attempt, analysisID string) (legal.AnalysisResult, error) {
	start := time.Now()
	metrics.IncAnalysisStarted()
	logTransition(ctx, sess.Snapshot(), StateFileSelected, StateAnalyzing, nil)

	persistCtx := context.WithoutCancel(ctx)
	if analysisID != "" {
		if err := s.Recorder.MarkProcessing(persistCtx, analysisID); err != nil {
			telemetry.Warn("analysis.record_failed", map[string]any{
				"request_id":  requestIDFromContext(ctx),
				"analysis_id": analysisID,
				"error":       err,
			})
		}
	}

	res, err := a.Run(s.Provider)
	metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Milliseconds()))
	snap := sess.Snapshot()

	switch {
	case errors.Is(err, ErrSuperseded):
		metrics.IncAnalysisSuperseded()
		telemetry.Info("analysis.superseded", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"session_id":  snap.ID,
			"analysis_id": analysisID,
		})
	case err != nil:
		metrics.IncAnalysisFailed()
		logTransition(ctx, snap, StateAnalyzing, StateIdle, err)
	default:
		metrics.IncAnalysisCompleted()
		logTransition(ctx, snap, StateAnalyzing, StateCompleted, nil)
	}

	if analysisID != "" {
		var rerr error
		if err != nil {
			rerr = s.Recorder.Fail(persistCtx, analysisID, err)
		} else {
			rerr = s.Recorder.Complete(persistCtx, analysisID, res)
		}
		if rerr != nil {
			telemetry.Warn("analysis.record_failed", map[string]any{
				"request_id":  requestIDFromContext(ctx),
				"analysis_id": analysisID,
				"error":       rerr,
			})
		}
	}
	return res, err
}

func logTransition(ctx context.Context, snap Snapshot, from, to State, err error) {
	fields := map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"session_id":        snap.ID,
		"analysis_id":       snap.AnalysisID,
		"status":            string(to),
		"status_transition": string(from) + "->" + string(to),
	}
	if snap.File != nil {
		fields["document_id"] = snap.File.DocumentID
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("analysis.status", fields)
		return
	}
	telemetry.Info("analysis.status", fields)
}

func snapshotOf(sess *Session) Snapshot {
	if sess == nil {
		return Snapshot{}
	}
	return sess.Snapshot()
}
