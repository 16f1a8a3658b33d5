package analyses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:a")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestGetAnalysisThrottlesPolling(t *testing.T) {
	svc, _ := newTestService()
	id, err := svc.Enqueue(context.Background(), "session-1", "", "guest:a", "demo")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	h := NewHandler(svc)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h.poll = newPollLimiter(time.Second, func() time.Time { return now })
	r := newTestRouter(h)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id, nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp.Header().Get("Retry-After"))
	}

	now = now.Add(2 * time.Second)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 after window, got %d", resp.Code)
	}
}

func TestReportAndNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	id, err := svc.Enqueue(ctx, "session-1", "", "guest:a", "demo")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	r := newTestRouter(NewHandler(svc))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id+"/report", nil))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}

	if err := svc.Complete(ctx, id, testResult()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id+"/report", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "HIGH RISK") {
		t.Fatalf("unexpected report: %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/unknown", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestListOmitsResults(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	id, err := svc.Enqueue(ctx, "session-1", "", "guest:a", "demo")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.Complete(ctx, id, testResult()); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	r := newTestRouter(NewHandler(svc))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, id) || strings.Contains(body, `"result"`) {
		t.Fatalf("unexpected list body: %s", body)
	}
}

func TestListLimitMatchesAcrossBackends(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		if _, err := svc.Enqueue(ctx, "session-1", "", "guest:a", "demo"); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	r := newTestRouter(NewHandler(svc))

	for query, want := range map[string]int{"": 20, "?limit=0": 20, "?limit=-1": 20, "?limit=500": 50, "?limit=7": 7} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses"+query, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%q: expected status 200, got %d", query, resp.Code)
		}
		var items []Analysis
		if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
			t.Fatalf("%q: decode: %v", query, err)
		}
		if len(items) != want {
			t.Fatalf("%q: expected %d items, got %d", query, want, len(items))
		}
	}
}
