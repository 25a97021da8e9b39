package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/debug"
	"github.com/rhuss/credentialwatch/pkg/observability"
	"github.com/rhuss/credentialwatch/pkg/provider"
)

// DefaultBaseURL is the OpenAI API.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds the settings of a Chat Completions backend.
type Config struct {
	// Name identifies the provider in logs and metrics. Defaults to "openai".
	Name string

	// BaseURL is the API root, with or without a trailing "/v1".
	BaseURL string

	APIKey string

	// Timeout bounds a single completion request. Defaults to 120s.
	Timeout time.Duration
}

// Provider performs HTTP requests against an OpenAI-compatible Chat
// Completions backend.
type Provider struct {
	name       string
	httpClient *http.Client
	url        string
	apiKey     string
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Provider for an OpenAI-compatible backend.
func New(cfg Config) (*Provider, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("invalid base URL %q: must start with http:// or https://", cfg.BaseURL)
	}

	url := base + "/v1/chat/completions"
	if strings.HasSuffix(base, "/v1") {
		url = base + "/chat/completions"
	}

	name := cfg.Name
	if name == "" {
		name = "openai"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Provider{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		apiKey:     cfg.APIKey,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return p.name }

// Complete performs non-streaming inference against the Chat Completions endpoint.
func (p *Provider) Complete(ctx context.Context, req *provider.ProviderRequest) (*provider.ProviderResponse, error) {
	chatReq := TranslateToChat(req)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	debug.Log("providers", "chat completion request", "url", p.url, "model", req.Model, "messages", len(req.Messages), "tools", len(req.Tools))
	debug.Trace("providers", "chat completion body", "body", debug.Truncate(string(body), 4096))

	start := time.Now()
	httpResp, err := p.httpClient.Do(httpReq)
	observability.ModelLatency.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewModelError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}
	if len(chatResp.Choices) == 0 {
		return nil, api.NewModelError("backend returned no choices")
	}

	return TranslateResponse(&chatResp), nil
}

// Close releases client resources.
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
