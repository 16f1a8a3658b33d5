package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"legal-backend/internal/legal"
	"legal-backend/internal/shared/telemetry"
)

const defaultRetryBaseDelay = 300 * time.Millisecond

// RetryPolicy bounds retries of retryable analysis failures.
// MaxRetries of zero keeps a single attempt.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

type retrying struct {
	base   Provider
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps p with exponential backoff. With MaxRetries <= 0 it returns p unchanged.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	if p == nil || policy.MaxRetries <= 0 {
		return p
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = defaultRetryBaseDelay
	}
	return &retrying{base: p, policy: policy, sleep: sleepContext}
}

func (r *retrying) Analyze(ctx context.Context, doc Document) (legal.AnalysisResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(r.policy, attempt)
			telemetry.Warn("provider.retry", map[string]any{
				"attempt":  attempt,
				"delay_ms": delay.Milliseconds(),
				"document": doc.Name,
				"error":    lastErr,
			})
			if err := r.sleep(ctx, delay); err != nil {
				return legal.AnalysisResult{}, err
			}
		}
		res, err := r.base.Analyze(ctx, doc)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !Retryable(err) || ctx.Err() != nil {
			return legal.AnalysisResult{}, err
		}
	}
	return legal.AnalysisResult{}, lastErr
}

func (r *retrying) HealthCheck(ctx context.Context) bool {
	return r.base.HealthCheck(ctx)
}

func backoff(policy RetryPolicy, attempt int) time.Duration {
	delay := policy.BaseDelay << (attempt - 1)
	if policy.MaxDelay > 0 && (delay > policy.MaxDelay || delay <= 0) {
		delay = policy.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retryable reports whether err looks transient: timeouts, dropped connections or 5xx replies.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof") {
		return true
	}
	return false
}

// StatusError carries the HTTP status of a failed upstream call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "upstream status " + strconv.Itoa(e.Code)
	}
	return "upstream status " + strconv.Itoa(e.Code) + ": " + e.Body
}
