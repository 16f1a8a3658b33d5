package intake

import (
	"context"
	"sync"
	"sync/atomic"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
)

type stubProvider struct {
	calls   atomic.Int32
	gate    chan struct{}
	started chan struct{}
	result  legal.AnalysisResult
	err     error
	panics  bool
	healthy bool
}

func (p *stubProvider) Analyze(ctx context.Context, _ provider.Document) (legal.AnalysisResult, error) {
	p.calls.Add(1)
	if p.started != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
	}
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return legal.AnalysisResult{}, ctx.Err()
		}
	}
	if p.panics {
		panic("boom")
	}
	if p.err != nil {
		return legal.AnalysisResult{}, p.err
	}
	return p.result.Clone(), nil
}

func (p *stubProvider) HealthCheck(context.Context) bool { return p.healthy }

type recorderCall struct {
	op string
	id string
}

type fakeRecorder struct {
	mu     sync.Mutex
	calls  []recorderCall
	result *legal.AnalysisResult
	cause  error
	mode   string
}

func (r *fakeRecorder) add(op, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorderCall{op: op, id: id})
}

func (r *fakeRecorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.op)
	}
	return out
}

func (r *fakeRecorder) Enqueue(_ context.Context, sessionID, _, _, mode string) (string, error) {
	r.mu.Lock()
	r.mode = mode
	r.mu.Unlock()
	r.add("enqueue", "analysis-"+sessionID)
	return "analysis-" + sessionID, nil
}

func (r *fakeRecorder) MarkProcessing(_ context.Context, id string) error {
	r.add("processing", id)
	return nil
}

func (r *fakeRecorder) Complete(_ context.Context, id string, result legal.AnalysisResult) error {
	r.mu.Lock()
	r.result = &result
	r.mu.Unlock()
	r.add("complete", id)
	return nil
}

func (r *fakeRecorder) Fail(_ context.Context, id string, cause error) error {
	r.mu.Lock()
	r.cause = cause
	r.mu.Unlock()
	r.add("fail", id)
	return nil
}

type fakeDocuments struct {
	mu    sync.Mutex
	saved []string
}

func (d *fakeDocuments) Save(_ context.Context, _, fileName, _ string, _ []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saved = append(d.saved, fileName)
	return "doc-" + fileName, nil
}

func validResult() legal.AnalysisResult {
	return legal.AnalysisResult{
		Summary:     "short",
		OverallRisk: legal.RiskLow,
		Clauses: []legal.Clause{
			{ClauseType: "Term", Content: "One year.", Confidence: 0.9, RiskLevel: legal.RiskLow},
		},
		RiskItems:      []legal.RiskItem{},
		Compliance:     []legal.ComplianceCheck{},
		Entities:       []legal.Entity{},
		ProcessingTime: 0.4,
	}
}

func textFile(name, body string) File {
	return File{Name: name, ContentType: "text/plain", Content: []byte(body)}
}

// slowHealthProvider blocks health checks until the caller gives up.
type slowHealthProvider struct {
	*stubProvider
}

func (p slowHealthProvider) HealthCheck(ctx context.Context) bool {
	<-ctx.Done()
	return false
}
