package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/telemetry"
)

// Mode is the operating mode chosen from the live provider's health.
type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeLive    Mode = "live"
	ModeDemo    Mode = "demo"
)

const DefaultHealthCheckTimeout = 3 * time.Second

// Selector decides between live and demo operation. The first probe is a
// one-shot task; callers that need the decision wait for it with Wait.
type Selector struct {
	live    Provider
	timeout time.Duration

	mu        sync.RWMutex
	mode      Mode
	checkedAt time.Time

	ready     chan struct{}
	readyOnce sync.Once
	startOnce sync.Once
	group     singleflight.Group
}

// NewSelector builds a selector probing live. A nil live provider always resolves to demo.
func NewSelector(live Provider, timeout time.Duration) *Selector {
	if timeout <= 0 {
		timeout = DefaultHealthCheckTimeout
	}
	return &Selector{
		live:    live,
		timeout: timeout,
		mode:    ModeUnknown,
		ready:   make(chan struct{}),
	}
}

// Start launches the startup probe in the background. Only the first call has an effect.
func (s *Selector) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.Refresh(context.WithoutCancel(ctx))
	})
}

// Wait blocks until the startup probe has resolved or ctx is done.
func (s *Selector) Wait(ctx context.Context) (Mode, error) {
	s.Start(context.Background())
	select {
	case <-s.ready:
		return s.Mode(), nil
	case <-ctx.Done():
		return ModeUnknown, ctx.Err()
	}
}

// Mode returns the current mode without blocking.
func (s *Selector) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// CheckedAt returns when the last probe resolved.
func (s *Selector) CheckedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkedAt
}

// Refresh probes the live provider again. Concurrent refreshes share one probe.
func (s *Selector) Refresh(ctx context.Context) Mode {
	v, _, _ := s.group.Do("probe", func() (any, error) {
		return s.probe(ctx), nil
	})
	return v.(Mode)
}

func (s *Selector) probe(ctx context.Context) Mode {
	start := time.Now()
	mode := ModeDemo
	var reason error

	if s.live == nil {
		reason = fmt.Errorf("%w: no live provider configured", ErrHealthCheckFailed)
	} else {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		healthy := s.check(probeCtx)
		if healthy {
			mode = ModeLive
		} else if err := probeCtx.Err(); err != nil {
			reason = fmt.Errorf("%w: %v", ErrHealthCheckFailed, err)
		} else {
			reason = ErrHealthCheckFailed
		}
		cancel()
	}

	s.mu.Lock()
	prev := s.mode
	s.mode = mode
	s.checkedAt = time.Now().UTC()
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	metrics.IncHealthProbe(mode == ModeLive)
	metrics.SetProviderMode(string(mode))

	fields := map[string]any{
		"mode":              string(mode),
		"status_transition": string(prev) + "->" + string(mode),
		"duration_ms":       float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if reason != nil {
		fields["reason"] = reason
	}
	telemetry.Info("provider.mode", fields)
	return mode
}

func (s *Selector) check(ctx context.Context) bool {
	result := make(chan bool, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				result <- false
			}
		}()
		result <- s.live.HealthCheck(ctx)
	}()
	select {
	case ok := <-result:
		return ok
	case <-ctx.Done():
		return false
	}
}
