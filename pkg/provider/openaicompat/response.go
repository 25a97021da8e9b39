package openaicompat

import (
	"github.com/rhuss/credentialwatch/pkg/provider"
)

// TranslateResponse converts a ChatCompletionResponse into a ProviderResponse.
// It uses only choices[0] and maps content, tool calls, finish reason, and usage.
func TranslateResponse(resp *ChatCompletionResponse) *provider.ProviderResponse {
	pr := &provider.ProviderResponse{
		Model:   resp.Model,
		Message: provider.ProviderMessage{Role: provider.RoleAssistant},
	}

	if resp.Usage != nil {
		pr.Usage = provider.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	if len(resp.Choices) == 0 {
		return pr
	}

	choice := resp.Choices[0]
	pr.FinishReason = choice.FinishReason
	pr.Message.Content = ExtractContentString(choice.Message.Content)

	for _, tc := range choice.Message.ToolCalls {
		pr.Message.ToolCalls = append(pr.Message.ToolCalls, provider.ProviderToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: provider.ProviderFunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	return pr
}

// ExtractContentString attempts to get a plain string from the message content.
// The content field in Chat Completions can be a string, nil, or a list of
// text parts.
func ExtractContentString(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		var out string
		for _, part := range v {
			if m, ok := part.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					out += text
				}
			}
		}
		return out
	default:
		return ""
	}
}
