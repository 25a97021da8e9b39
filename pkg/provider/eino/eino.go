package eino

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"

	"github.com/rhuss/credentialwatch/pkg/debug"
	"github.com/rhuss/credentialwatch/pkg/observability"
	"github.com/rhuss/credentialwatch/pkg/provider"
)

// Config holds the settings of the eino OpenAI chat model.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Provider runs inference through an eino chat model.
type Provider struct {
	name  string
	model model.ToolCallingChatModel
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Provider backed by the eino-ext OpenAI chat model.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API key is required for the eino provider")
	}
	mc := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		mc.BaseURL = cfg.BaseURL
	}
	m, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("creating eino chat model: %w", err)
	}
	return Wrap("eino", m), nil
}

// Wrap adapts an existing chat model.
func Wrap(name string, m model.ToolCallingChatModel) *Provider {
	return &Provider{name: name, model: m}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return p.name }

// Complete binds the request tools to the model and generates one message.
func (p *Provider) Complete(ctx context.Context, req *provider.ProviderRequest) (*provider.ProviderResponse, error) {
	m := p.model
	if len(req.Tools) > 0 {
		infos, err := toolInfos(req.Tools)
		if err != nil {
			return nil, err
		}
		m, err = p.model.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("binding tools: %w", err)
		}
	}

	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(float32(*req.Temperature)))
	}
	if req.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*req.MaxTokens))
	}

	debug.Log("providers", "eino generate", "messages", len(req.Messages), "tools", len(req.Tools))

	start := time.Now()
	out, err := m.Generate(ctx, toMessages(req.Messages), opts...)
	observability.ModelLatency.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("eino generate: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("eino generate: empty response")
	}

	return fromMessage(out, req.Model), nil
}

// Close is a no-op; eino models hold no resources that need releasing.
func (p *Provider) Close() error { return nil }

func toMessages(msgs []provider.ProviderMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, pm := range msgs {
		switch pm.Role {
		case provider.RoleSystem:
			out = append(out, schema.SystemMessage(pm.Content))
		case provider.RoleAssistant:
			var calls []schema.ToolCall
			for _, tc := range pm.ToolCalls {
				typ := tc.Type
				if typ == "" {
					typ = "function"
				}
				calls = append(calls, schema.ToolCall{
					ID:   tc.ID,
					Type: typ,
					Function: schema.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			out = append(out, schema.AssistantMessage(pm.Content, calls))
		case provider.RoleTool:
			out = append(out, schema.ToolMessage(pm.Content, pm.ToolCallID))
		default:
			out = append(out, schema.UserMessage(pm.Content))
		}
	}
	return out
}

func fromMessage(m *schema.Message, requestedModel string) *provider.ProviderResponse {
	resp := &provider.ProviderResponse{
		Model: requestedModel,
		Message: provider.ProviderMessage{
			Role:    provider.RoleAssistant,
			Content: m.Content,
		},
	}
	for _, tc := range m.ToolCalls {
		resp.Message.ToolCalls = append(resp.Message.ToolCalls, provider.ProviderToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: provider.ProviderFunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	if meta := m.ResponseMeta; meta != nil {
		resp.FinishReason = meta.FinishReason
		if meta.Usage != nil {
			resp.Usage = provider.Usage{
				InputTokens:  meta.Usage.PromptTokens,
				OutputTokens: meta.Usage.CompletionTokens,
				TotalTokens:  meta.Usage.TotalTokens,
			}
		}
	}
	return resp
}

// toolInfos converts function definitions into eino tool infos. The JSON
// Schema of each tool is passed through as-is.
func toolInfos(defs []provider.ProviderTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, d := range defs {
		info := &schema.ToolInfo{
			Name: d.Function.Name,
			Desc: d.Function.Description,
		}
		if len(d.Function.Parameters) > 0 {
			var js jsonschema.Schema
			if err := json.Unmarshal(d.Function.Parameters, &js); err != nil {
				return nil, fmt.Errorf("parsing parameters of tool %q: %w", d.Function.Name, err)
			}
			info.ParamsOneOf = schema.NewParamsOneOfByJSONSchema(&js)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
