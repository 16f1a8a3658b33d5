package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/legal"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	errs     []error
	result   legal.AnalysisResult
	healthy  bool
	probeFor time.Duration
	gate     chan struct{}
	probes   atomic.Int32
}

func (f *fakeProvider) Analyze(ctx context.Context, doc Document) (legal.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return legal.AnalysisResult{}, f.errs[idx]
	}
	return f.result, nil
}

func (f *fakeProvider) HealthCheck(ctx context.Context) bool {
	f.probes.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.probeFor > 0 {
		select {
		case <-time.After(f.probeFor):
		case <-ctx.Done():
			return false
		}
	}
	return f.healthy
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestWithRetryZeroKeepsSingleAttempt(t *testing.T) {
	base := &fakeProvider{errs: []error{&StatusError{Code: http.StatusBadGateway}}}
	p := WithRetry(base, RetryPolicy{})
	assert.Same(t, base, p)

	_, err := p.Analyze(context.Background(), Document{Name: "a.txt"})
	require.Error(t, err)
	assert.Equal(t, 1, base.Calls())
}

func TestWithRetryRetriesTransientFailures(t *testing.T) {
	base := &fakeProvider{
		errs:   []error{&StatusError{Code: http.StatusServiceUnavailable}, context.DeadlineExceeded},
		result: legal.AnalysisResult{OverallRisk: legal.RiskLow},
	}
	p := WithRetry(base, RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}).(*retrying)
	p.sleep = noSleep

	res, err := p.Analyze(context.Background(), Document{Name: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, legal.RiskLow, res.OverallRisk)
	assert.Equal(t, 3, base.Calls())
}

func TestWithRetryStopsOnPermanentFailure(t *testing.T) {
	base := &fakeProvider{errs: []error{&StatusError{Code: http.StatusBadRequest}}}
	p := WithRetry(base, RetryPolicy{MaxRetries: 3}).(*retrying)
	p.sleep = noSleep

	_, err := p.Analyze(context.Background(), Document{})
	require.Error(t, err)
	assert.Equal(t, 1, base.Calls())
}

func TestWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	transient := &StatusError{Code: http.StatusInternalServerError}
	base := &fakeProvider{errs: []error{transient, transient, transient, transient}}
	p := WithRetry(base, RetryPolicy{MaxRetries: 2}).(*retrying)
	p.sleep = noSleep

	_, err := p.Analyze(context.Background(), Document{})
	require.Error(t, err)
	assert.Equal(t, 3, base.Calls())
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	policy := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, backoff(policy, 1))
	assert.Equal(t, 200*time.Millisecond, backoff(policy, 2))
	assert.Equal(t, 350*time.Millisecond, backoff(policy, 3))
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "5xx", err: fmt.Errorf("%w: %w", ErrAnalysisUnavailable, &StatusError{Code: 502}), want: true},
		{name: "4xx", err: &StatusError{Code: 422}, want: false},
		{name: "429", err: fmt.Errorf("%w: %w", ErrAnalysisUnavailable, &StatusError{Code: http.StatusTooManyRequests}), want: true},
		{name: "refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "plain", err: errors.New("bad json"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestSelectorHealthyLiveSelectsLive(t *testing.T) {
	sel := NewSelector(&fakeProvider{healthy: true}, time.Second)
	assert.Equal(t, ModeUnknown, sel.Mode())

	sel.Start(context.Background())
	mode, err := sel.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeLive, mode)
	assert.False(t, sel.CheckedAt().IsZero())
}

func TestSelectorUnhealthyFallsBackToDemo(t *testing.T) {
	sel := NewSelector(&fakeProvider{healthy: false}, time.Second)
	mode, err := sel.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeDemo, mode)
}

func TestSelectorNilLiveIsDemo(t *testing.T) {
	sel := NewSelector(nil, time.Second)
	mode, err := sel.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeDemo, mode)
}

func TestSelectorProbeTimeoutSelectsDemo(t *testing.T) {
	live := &fakeProvider{healthy: true, probeFor: time.Minute}
	sel := NewSelector(live, 20*time.Millisecond)

	start := time.Now()
	mode, err := sel.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeDemo, mode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSelectorWaitHonorsContext(t *testing.T) {
	live := &fakeProvider{healthy: true, probeFor: time.Minute}
	sel := NewSelector(live, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	mode, err := sel.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ModeUnknown, mode)
}

func TestSelectorConcurrentRefreshSharesProbe(t *testing.T) {
	live := &fakeProvider{healthy: true, gate: make(chan struct{})}
	sel := NewSelector(live, time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sel.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool { return live.probes.Load() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sel.Refresh(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(live.gate)
	wg.Wait()

	assert.Equal(t, int32(1), live.probes.Load())
	assert.Equal(t, ModeLive, sel.Mode())
}

func TestSwitchRoutesByMode(t *testing.T) {
	live := &fakeProvider{healthy: true, result: legal.AnalysisResult{Summary: "live"}}
	demo := &fakeProvider{healthy: true, result: legal.AnalysisResult{Summary: "demo"}}

	sw := NewSwitch(NewSelector(live, time.Second), live, demo)
	res, err := sw.Analyze(context.Background(), Document{})
	require.NoError(t, err)
	assert.Equal(t, "live", res.Summary)

	live.healthy = false
	sw.Selector.Refresh(context.Background())
	res, err = sw.Analyze(context.Background(), Document{})
	require.NoError(t, err)
	assert.Equal(t, "demo", res.Summary)
}

func TestSwitchUnresolvedModeIsUnavailable(t *testing.T) {
	live := &fakeProvider{healthy: true, probeFor: time.Minute}
	sw := NewSwitch(NewSelector(live, time.Minute), live, &fakeProvider{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := sw.Analyze(ctx, Document{})
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
}
