package analyses

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/intake"
	"legal-backend/internal/legal"
	"legal-backend/internal/queue"
)

func testResult() legal.AnalysisResult {
	return legal.AnalysisResult{
		Summary:     "NDA",
		OverallRisk: legal.RiskHigh,
		Clauses: []legal.Clause{
			{ClauseType: "Term", Content: "Perpetual.", Confidence: 0.8, RiskLevel: legal.RiskHigh},
		},
		RiskItems:      []legal.RiskItem{},
		Compliance:     []legal.ComplianceCheck{},
		Entities:       []legal.Entity{},
		ProcessingTime: 1.2,
	}
}

func newTestService() (*Service, *queue.MemoryClient) {
	q := &queue.MemoryClient{}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	return &Service{
		Repo:  NewMemoryRepo(),
		Queue: q,
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
	}, q
}

func TestRecorderLifecycleCompleted(t *testing.T) {
	ctx := context.Background()
	svc, q := newTestService()

	id, err := svc.Enqueue(ctx, "session-1", "doc-1", "guest:a", "demo")
	require.NoError(t, err)

	a, err := svc.Get(ctx, "guest:a", id)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, a.Status)

	require.NoError(t, svc.MarkProcessing(ctx, id))
	require.NoError(t, svc.Complete(ctx, id, testResult()))

	a, err = svc.Get(ctx, "guest:a", id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Equal(t, "high", a.OverallRisk)
	require.NotNil(t, a.Result)
	assert.Len(t, a.Result.Clauses, 1)
	require.NotNil(t, a.StartedAt)
	require.NotNil(t, a.CompletedAt)
	assert.True(t, a.CompletedAt.After(*a.StartedAt))
	assert.True(t, a.Terminal())

	sent := q.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, id, sent[0].AnalysisID)
	assert.Equal(t, StatusCompleted, sent[0].Status)
	assert.Equal(t, "high", sent[0].OverallRisk)
	assert.Equal(t, "session-1", sent[0].SessionID)
}

func TestRecorderFailureCodes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		cause      error
		wantStatus string
		wantCode   string
	}{
		{name: "superseded", cause: intake.ErrSuperseded, wantStatus: StatusSuperseded, wantCode: ErrorCodeSuperseded},
		{name: "timeout", cause: fmt.Errorf("analysis unavailable: %w", context.DeadlineExceeded), wantStatus: StatusFailed, wantCode: ErrorCodeTimeout},
		{name: "canceled", cause: context.Canceled, wantStatus: StatusFailed, wantCode: ErrorCodeCanceled},
		{name: "schema", cause: &legal.ValidationError{Fields: []legal.FieldError{{Field: "overall_risk", Issue: "bad"}}}, wantStatus: StatusFailed, wantCode: ErrorCodeSchemaMismatch},
		{name: "other", cause: errors.New("backend returned 500"), wantStatus: StatusFailed, wantCode: ErrorCodeUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, q := newTestService()
			id, err := svc.Enqueue(ctx, "session-1", "", "guest:a", "live")
			require.NoError(t, err)

			require.NoError(t, svc.Fail(ctx, id, tc.cause))

			a, err := svc.Get(ctx, "guest:a", id)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, a.Status)
			assert.Equal(t, tc.wantCode, a.ErrorCode)
			require.NotNil(t, a.ErrorMessage)
			assert.Nil(t, a.Result)
			assert.Len(t, q.Sent(), 1)
		})
	}
}

func TestGetIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	id, err := svc.Enqueue(ctx, "session-1", "", "guest:a", "demo")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "guest:b", id)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Enqueue(ctx, "", "", "guest:a", "demo")
	require.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	first, err := svc.Enqueue(ctx, "s1", "", "guest:a", "demo")
	require.NoError(t, err)
	second, err := svc.Enqueue(ctx, "s2", "", "guest:a", "demo")
	require.NoError(t, err)
	_, err = svc.Enqueue(ctx, "s3", "", "guest:b", "demo")
	require.NoError(t, err)

	items, err := svc.List(ctx, "guest:a", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second, items[0].ID)
	assert.Equal(t, first, items[1].ID)
}

func TestUpdateUnknownAnalysis(t *testing.T) {
	svc, q := newTestService()
	err := svc.Complete(context.Background(), "missing", testResult())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, q.Sent())
}
