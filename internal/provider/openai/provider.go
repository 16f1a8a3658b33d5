package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
	"legal-backend/internal/shared/telemetry"
)

const (
	DefaultModel = "gpt-4o-mini"
	maxTokens    = 4096
)

// Provider analyses documents with an OpenAI chat model.
type Provider struct {
	client *goopenai.Client
	model  string
}

// New constructs a provider. baseURL may be empty to use the public API.
func New(apiKey, baseURL, model string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(baseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  strings.TrimSpace(model),
	}, nil
}

// Analyze sends the document text to the model and validates its JSON answer.
// An unparseable first answer gets one repair round.
func (p *Provider) Analyze(ctx context.Context, doc provider.Document) (legal.AnalysisResult, error) {
	start := time.Now()

	raw, err := p.complete(ctx, buildMessages(doc.Name, string(doc.Content)))
	if err != nil {
		return legal.AnalysisResult{}, err
	}
	result, parseErr := parseResult(raw)
	if parseErr != nil {
		telemetry.Warn("openai.repair", map[string]any{
			"model":    p.model,
			"document": doc.Name,
			"error":    parseErr,
		})
		raw, err = p.complete(ctx, buildFixMessages(raw, parseErr))
		if err != nil {
			return legal.AnalysisResult{}, err
		}
		result, parseErr = parseResult(raw)
		if parseErr != nil {
			return legal.AnalysisResult{}, fmt.Errorf("%w: llm output invalid: %w", provider.ErrAnalysisUnavailable, parseErr)
		}
	}

	if result.ProcessingTime <= 0 {
		result.ProcessingTime = time.Since(start).Seconds()
	}
	return result, nil
}

// HealthCheck lists models as a cheap authenticated liveness probe.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

func (p *Provider) complete(ctx context.Context, messages []goopenai.ChatCompletionMessage) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if usesCompletionTokens(p.model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion: %w", provider.ErrAnalysisUnavailable, classifyError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", provider.ErrAnalysisUnavailable)
	}
	telemetry.Info("openai.usage", map[string]any{
		"model":             p.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})
	return resp.Choices[0].Message.Content, nil
}

func parseResult(raw string) (legal.AnalysisResult, error) {
	var result legal.AnalysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return legal.AnalysisResult{}, fmt.Errorf("llm output parse: %w", err)
	}
	result.Normalize()
	if err := result.Validate(); err != nil {
		return legal.AnalysisResult{}, err
	}
	return result, nil
}

// classifyError surfaces the HTTP status so retry policies can tell 5xx from 4xx.
func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return errors.Join(err, &provider.StatusError{Code: apiErr.HTTPStatusCode, Body: apiErr.Message})
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return errors.Join(err, &provider.StatusError{Code: reqErr.HTTPStatusCode})
	}
	return err
}

// usesCompletionTokens reports whether model only accepts max_completion_tokens.
func usesCompletionTokens(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

var _ provider.Provider = (*Provider)(nil)
