package provider

import (
	"context"
	"fmt"

	"legal-backend/internal/legal"
)

// Switch routes each analysis to the live or demo provider according to the selector.
type Switch struct {
	Selector *Selector
	Live     Provider
	Demo     Provider
}

// NewSwitch constructs a Switch.
func NewSwitch(sel *Selector, live, demo Provider) *Switch {
	return &Switch{Selector: sel, Live: live, Demo: demo}
}

// Analyze waits for the mode decision and delegates.
func (s *Switch) Analyze(ctx context.Context, doc Document) (legal.AnalysisResult, error) {
	mode, err := s.Selector.Wait(ctx)
	if err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: mode unresolved: %w", ErrAnalysisUnavailable, err)
	}
	p := s.For(mode)
	if p == nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: no provider for mode %s", ErrAnalysisUnavailable, mode)
	}
	return p.Analyze(ctx, doc)
}

// HealthCheck reports the live provider's health, or the demo's when no live provider is set.
func (s *Switch) HealthCheck(ctx context.Context) bool {
	if s.Live != nil {
		return s.Live.HealthCheck(ctx)
	}
	if s.Demo != nil {
		return s.Demo.HealthCheck(ctx)
	}
	return false
}

// For returns the provider serving mode.
func (s *Switch) For(mode Mode) Provider {
	if mode == ModeLive && s.Live != nil {
		return s.Live
	}
	return s.Demo
}
