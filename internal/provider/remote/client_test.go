package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
	"legal-backend/internal/provider/demo"
)

func TestNewClientValidatesURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		want    string
	}{
		{name: "empty", url: " ", wantErr: true},
		{name: "no scheme", url: "localhost:8000", wantErr: true},
		{name: "trailing slash", url: "http://localhost:8000/", want: "http://localhost:8000"},
		{name: "https", url: "https://analysis.internal", want: "https://analysis.internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.url, time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestHealthCheckStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: http.StatusOK, want: true},
		{name: "no content", status: http.StatusNoContent, want: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, want: false},
		{name: "not found", status: http.StatusNotFound, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL, time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.HealthCheck(context.Background()))
		})
	}
}

func TestHealthCheckNetworkErrorIsFalse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)
	assert.False(t, c.HealthCheck(context.Background()))
}

func TestAnalyzePostsMultipartAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analyze", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "founders.txt", header.Filename)
		assert.Equal(t, "text/plain", header.Header.Get("Content-Type"))
		assert.Equal(t, "agreement body", string(content))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(demo.Result())
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	res, err := c.Analyze(context.Background(), provider.Document{
		Name:        "founders.txt",
		ContentType: "text/plain",
		Content:     []byte("agreement body"),
	})
	require.NoError(t, err)
	assert.Equal(t, legal.RiskMedium, res.OverallRisk)
	assert.Len(t, res.Clauses, 6)
}

func TestAnalyzeNon2xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), provider.Document{Name: "a.txt"})
	require.ErrorIs(t, err, provider.ErrAnalysisUnavailable)
	var statusErr *provider.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.True(t, provider.Retryable(err))
}

func TestAnalyzeRejectsOutOfRangeResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := demo.Result()
		res.Clauses[0].Confidence = 7
		_ = json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), provider.Document{Name: "a.txt"})
	require.ErrorIs(t, err, provider.ErrAnalysisUnavailable)
	var verr *legal.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAnalyzeUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), provider.Document{Name: "a.txt"})
	assert.ErrorIs(t, err, provider.ErrAnalysisUnavailable)
}
