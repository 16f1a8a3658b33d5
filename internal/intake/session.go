package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
)

// State is the lifecycle position of a session.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateAnalyzing    State = "analyzing"
	StateCompleted    State = "completed"
)

// File is an accepted upload held by a session.
type File struct {
	Name        string
	ContentType string
	Content     []byte
	DocumentID  string
}

// Failure is the last analysis error kept for display.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FileInfo describes the selected file without its content.
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	DocumentID  string `json:"documentId,omitempty"`
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID         string
	OwnerID    string
	State      State
	File       *FileInfo
	Result     *legal.AnalysisResult
	Failure    *Failure
	AnalysisID string
	UpdatedAt  time.Time
}

// Session holds one user's file, its analysis and the current result.
// All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         string
	owner      string
	state      State
	file       *File
	result     *legal.AnalysisResult
	failure    *Failure
	analysisID string
	generation uint64
	cancel     context.CancelFunc
	updatedAt  time.Time
	now        func() time.Time
}

// NewSession returns an idle session.
func NewSession(id, owner string) *Session {
	s := &Session{id: id, owner: owner, state: StateIdle, now: time.Now}
	s.updatedAt = s.now().UTC()
	return s
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

// Submit selects f for analysis. A rejected file leaves the session untouched.
// An accepted file discards any previous result and supersedes an analysis in flight.
func (s *Session) Submit(f File) (State, error) {
	effective, err := DetectFileType(f.Name, f.ContentType, f.Content)
	if err != nil {
		return s.State(), err
	}
	f.ContentType = effective
	f.Content = append([]byte(nil), f.Content...)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.file = &f
	s.result = nil
	s.failure = nil
	s.analysisID = ""
	s.state = StateFileSelected
	s.touch()
	return prev, nil
}

// Begin claims the session for one analysis. The returned attempt must be run
// exactly once. timeout bounds the provider call when positive. An idle
// session still holding the file of a failed attempt may be analyzed again.
func (s *Session) Begin(ctx context.Context, timeout time.Duration) (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAnalyzing:
		return nil, ErrAnalysisInProgress
	case StateCompleted:
		return nil, ErrResultReady
	}
	if s.file == nil {
		return nil, ErrNoFileSelected
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	s.generation++
	s.cancel = cancel
	s.state = StateAnalyzing
	s.failure = nil
	s.touch()

	return &Attempt{
		session:    s,
		generation: s.generation,
		ctx:        runCtx,
		cancel:     cancel,
		doc: provider.Document{
			Name:        s.file.Name,
			ContentType: s.file.ContentType,
			Content:     s.file.Content,
		},
		documentID: s.file.DocumentID,
	}, nil
}

// Analyze runs one analysis to completion with p.
func (s *Session) Analyze(ctx context.Context, p provider.Provider) (legal.AnalysisResult, error) {
	a, err := s.Begin(ctx, 0)
	if err != nil {
		return legal.AnalysisResult{}, err
	}
	return a.Run(p)
}

// Cancel aborts an analysis in flight. The session settles once the attempt returns.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot copies the session under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.id,
		OwnerID:    s.owner,
		State:      s.state,
		AnalysisID: s.analysisID,
		UpdatedAt:  s.updatedAt,
	}
	if s.file != nil {
		snap.File = &FileInfo{
			Name:        s.file.Name,
			ContentType: s.file.ContentType,
			SizeBytes:   int64(len(s.file.Content)),
			DocumentID:  s.file.DocumentID,
		}
	}
	if s.result != nil {
		r := s.result.Clone()
		snap.Result = &r
	}
	if s.failure != nil {
		f := *s.failure
		snap.Failure = &f
	}
	return snap
}

func (s *Session) setAnalysisID(generation uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		s.analysisID = id
	}
}

func (s *Session) finish(a *Attempt, res legal.AnalysisResult, err error) (legal.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != a.generation {
		return legal.AnalysisResult{}, ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		if !errors.Is(err, provider.ErrAnalysisUnavailable) {
			err = fmt.Errorf("%w: %w", provider.ErrAnalysisUnavailable, err)
		}
		s.state = StateIdle
		s.failure = &Failure{Code: ErrorCodeAnalysisUnavailable, Message: err.Error()}
		s.touch()
		return legal.AnalysisResult{}, err
	}

	stored := res.Clone()
	s.result = &stored
	s.state = StateCompleted
	s.touch()
	return res, nil
}

func (s *Session) touch() {
	s.updatedAt = s.now().UTC()
}

// Attempt is one claimed analysis of a session's file.
type Attempt struct {
	session    *Session
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	doc        provider.Document
	documentID string
}

// DocumentID returns the stored document id of the file under analysis, if any.
func (a *Attempt) DocumentID() string { return a.documentID }

// SetAnalysisID links the attempt to a persisted analysis record.
func (a *Attempt) SetAnalysisID(id string) { a.session.setAnalysisID(a.generation, id) }

// Abort releases a claimed attempt without calling a provider.
func (a *Attempt) Abort(cause error) error {
	_, err := a.finalize(legal.AnalysisResult{}, cause)
	return err
}

// Run calls p and settles the session. It returns ErrSuperseded when a newer
// upload replaced the file while p was running.
func (a *Attempt) Run(p provider.Provider) (res legal.AnalysisResult, err error) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: provider panic: %v", provider.ErrAnalysisUnavailable, r)
			}
		}()
		res, err = p.Analyze(a.ctx, a.doc)
	}()

	if err == nil {
		res.Normalize()
		if verr := res.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", provider.ErrAnalysisUnavailable, verr)
		}
	}
	return a.finalize(res, err)
}

func (a *Attempt) finalize(res legal.AnalysisResult, err error) (legal.AnalysisResult, error) {
	defer a.cancel()
	return a.session.finish(a, res, err)
}
