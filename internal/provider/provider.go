package provider

import (
	"context"
	"errors"

	"legal-backend/internal/legal"
)

var (
	// ErrAnalysisUnavailable is returned when the backing analysis service is
	// unreachable, errors, or produces an unusable result.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrHealthCheckFailed marks a failed liveness probe. It only ever reaches logs.
	ErrHealthCheckFailed = errors.New("health check failed")
)

// Document is the input handed to a provider.
type Document struct {
	Name        string
	ContentType string
	Content     []byte
}

// Provider analyses legal documents.
type Provider interface {
	Analyze(ctx context.Context, doc Document) (legal.AnalysisResult, error)
	// HealthCheck must not block beyond ctx and must map every failure to false.
	HealthCheck(ctx context.Context) bool
}

// Func adapts a plain function into a Provider that is always healthy.
type Func func(ctx context.Context, doc Document) (legal.AnalysisResult, error)

func (f Func) Analyze(ctx context.Context, doc Document) (legal.AnalysisResult, error) {
	return f(ctx, doc)
}

func (f Func) HealthCheck(context.Context) bool { return true }
