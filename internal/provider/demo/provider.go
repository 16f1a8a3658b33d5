package demo

import (
	"context"
	"time"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
)

// DefaultDelay mimics the latency of a real analysis backend.
const DefaultDelay = 1500 * time.Millisecond

// Provider serves the canned founders agreement result regardless of input.
type Provider struct {
	Delay time.Duration
}

// New constructs a demo provider. A negative delay is treated as zero.
func New(delay time.Duration) *Provider {
	if delay < 0 {
		delay = 0
	}
	return &Provider{Delay: delay}
}

// Analyze waits for the configured delay and returns a copy of the canned result.
func (p *Provider) Analyze(ctx context.Context, _ provider.Document) (legal.AnalysisResult, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return legal.AnalysisResult{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return legal.AnalysisResult{}, err
	}
	return Result(), nil
}

// HealthCheck always succeeds; the demo dataset is local.
func (p *Provider) HealthCheck(context.Context) bool { return true }

// Result returns a fresh copy of the canned result.
func Result() legal.AnalysisResult {
	return foundersAgreement.Clone()
}

var _ provider.Provider = (*Provider)(nil)
