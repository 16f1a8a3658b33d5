package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
	"legal-backend/internal/provider/demo"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := New("test-key", srv.URL+"/v1", "gpt-4o-mini")
	require.NoError(t, err)
	return p
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(" ", "", "")
	assert.Error(t, err)

	p, err := New("key", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.model)
}

func TestAnalyzeParsesJSONAnswer(t *testing.T) {
	payload, err := json.Marshal(demo.Result())
	require.NoError(t, err)

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		format, _ := req["response_format"].(map[string]any)
		assert.Equal(t, "json_object", format["type"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(string(payload)))
	})

	res, err := p.Analyze(context.Background(), provider.Document{Name: "founders.txt", Content: []byte("text")})
	require.NoError(t, err)
	assert.Equal(t, legal.RiskMedium, res.OverallRisk)
	assert.Len(t, res.Compliance, 4)
}

func TestAnalyzeRepairsInvalidAnswerOnce(t *testing.T) {
	payload, err := json.Marshal(demo.Result())
	require.NoError(t, err)

	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			_ = json.NewEncoder(w).Encode(chatResponse(`{"overall_risk":"catastrophic"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse(string(payload)))
	})

	res, err := p.Analyze(context.Background(), provider.Document{Name: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, res.Clauses, 6)
}

func TestAnalyzeGivesUpAfterRepair(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("not json"))
	})

	_, err := p.Analyze(context.Background(), provider.Document{Name: "a.txt"})
	assert.ErrorIs(t, err, provider.ErrAnalysisUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnalyzeServerErrorIsRetryable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	_, err := p.Analyze(context.Background(), provider.Document{Name: "a.txt"})
	require.ErrorIs(t, err, provider.ErrAnalysisUnavailable)
	assert.True(t, provider.Retryable(err))
}

func TestHealthCheckListsModels(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})
	assert.True(t, p.HealthCheck(context.Background()))

	down := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})
	assert.False(t, down.HealthCheck(context.Background()))
}

func TestUsesCompletionTokens(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{model: "gpt-5-mini", want: true},
		{model: " O3-mini ", want: true},
		{model: "o1", want: true},
		{model: "gpt-4o-mini", want: false},
		{model: "", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.model, func(t *testing.T) {
			if got := usesCompletionTokens(tt.model); got != tt.want {
				t.Fatalf("usesCompletionTokens(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	long := make([]byte, maxDocumentChars+100)
	for i := range long {
		long[i] = 'a'
	}
	prompt := buildUserPrompt("big.txt", string(long))
	assert.LessOrEqual(t, len(prompt), maxDocumentChars+len("Document name: big.txt\n\nDocument text:\n"))
}
