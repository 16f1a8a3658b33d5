package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	healthPath  = "/health"
	analyzePath = "/api/v1/analyze"

	maxErrorBody = 512
)

// Client talks to an analysis backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for baseURL. Analyze calls are bounded by timeout;
// health checks are bounded by the caller's context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("analysis backend url is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("analysis backend url must be http(s): %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthCheck reports whether GET /health answers with a 2xx status.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Analyze uploads the document as multipart form data and decodes the result.
func (c *Client) Analyze(ctx context.Context, doc provider.Document) (legal.AnalysisResult, error) {
	body, contentType, err := encodeDocument(doc)
	if err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, body)
	if err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: build request: %w", provider.ErrAnalysisUnavailable, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: %w", provider.ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return legal.AnalysisResult{}, fmt.Errorf("%w: %w", provider.ErrAnalysisUnavailable, &provider.StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(snippet)),
		})
	}

	var result legal.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: decode result: %w", provider.ErrAnalysisUnavailable, err)
	}
	result.Normalize()
	if err := result.Validate(); err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("%w: %w", provider.ErrAnalysisUnavailable, err)
	}
	return result, nil
}

func encodeDocument(doc provider.Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	name := doc.Name
	if name == "" {
		name = "document.txt"
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

var _ provider.Provider = (*Client)(nil)
