package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rhuss/credentialwatch/pkg/debug"
	"github.com/rhuss/credentialwatch/pkg/observability"
	"github.com/rhuss/credentialwatch/pkg/provider"
	"github.com/rhuss/credentialwatch/pkg/tools"
)

// Turn outcomes recorded in credentialwatch_turns_total.
const (
	turnAnswered     = "answered"
	turnToolFailure  = "tool_failure"
	turnModelFailure = "model_failure"
	turnExceeded     = "loop_exceeded"
)

// run alternates decide (one model round) and act (executing the requested
// tool calls) until the model answers without tool calls.
func (e *Engine) run(ctx context.Context, conv *conversation) (string, error) {
	maxTurns := e.cfg.maxTurns()
	catalog := provider.ToolsFromCatalog(e.tools.Tools())

	for turn := 0; turn < maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		// Decide.
		msg, err := e.decide(ctx, conv, catalog)
		if err != nil {
			observability.TurnsTotal.WithLabelValues(turnModelFailure).Inc()
			return "", err
		}
		conv.append(msg)

		if len(msg.ToolCalls) == 0 {
			observability.TurnsTotal.WithLabelValues(turnAnswered).Inc()
			debug.Log("engine", "turn answered", "rounds", turn+1)
			return msg.Content, nil
		}

		// Act.
		results, err := e.act(ctx, msg.ToolCalls)
		if err != nil {
			observability.TurnsTotal.WithLabelValues(turnToolFailure).Inc()
			return "", err
		}
		for _, r := range results {
			conv.append(provider.ProviderMessage{
				Role:       provider.RoleTool,
				Content:    r.Output,
				ToolCallID: r.CallID,
				Name:       r.Name,
			})
		}
	}

	observability.TurnsTotal.WithLabelValues(turnExceeded).Inc()
	e.logger.Warn("conversation turn reached the model round cap", "max_turns", maxTurns)
	return "", fmt.Errorf("%w: no answer after %d model rounds", ErrLoopExceeded, maxTurns)
}

func (e *Engine) decide(ctx context.Context, conv *conversation, catalog []provider.ProviderTool) (provider.ProviderMessage, error) {
	req := &provider.ProviderRequest{
		Model:       e.cfg.Model,
		Messages:    conv.messages,
		Tools:       catalog,
		Temperature: e.cfg.Temperature,
	}
	if e.cfg.MaxTokens > 0 {
		req.MaxTokens = &e.cfg.MaxTokens
	}

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		return provider.ProviderMessage{}, fmt.Errorf("model %s: %w", e.provider.Name(), err)
	}

	msg := resp.Message
	msg.Role = provider.RoleAssistant
	return msg, nil
}

// act executes the tool calls of one round. Results are returned in call
// order. The first failure in call order is returned as the error.
func (e *Engine) act(ctx context.Context, calls []provider.ProviderToolCall) ([]tools.ToolResult, error) {
	results := make([]tools.ToolResult, len(calls))
	errs := make([]error, len(calls))

	if e.cfg.SequentialTools {
		for i, tc := range calls {
			results[i], errs[i] = e.executeTool(ctx, tc)
			if errs[i] != nil {
				return nil, errs[i]
			}
		}
		return results, nil
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(idx int, tc provider.ProviderToolCall) {
			defer wg.Done()
			results[idx], errs[idx] = e.executeTool(ctx, tc)
		}(i, call)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// executeTool runs a single tool call through the tool client.
func (e *Engine) executeTool(ctx context.Context, tc provider.ProviderToolCall) (tools.ToolResult, error) {
	call := tools.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments}

	endpoint, err := e.tools.EndpointFor(call.Name)
	if err != nil {
		debug.Log("engine", "tool has no owning endpoint", "tool", call.Name)
		endpoint = ""
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return tools.ToolResult{}, &tools.InvocationError{Endpoint: endpoint, Operation: call.Name, Tool: call.Name, Err: err}
	}

	debug.Log("engine", "executing tool", "tool", call.Name, "endpoint", endpoint, "call_id", call.ID)

	out, err := e.tools.CallTool(ctx, endpoint, call.Name, args)
	if err != nil {
		e.logger.Error("tool invocation failed", "tool", call.Name, "endpoint", endpoint, "error", err)
		return tools.ToolResult{}, err
	}

	text, err := resultText(out)
	if err != nil {
		return tools.ToolResult{}, &tools.InvocationError{Endpoint: endpoint, Operation: call.Name, Tool: call.Name, Err: err}
	}
	return tools.ToolResult{CallID: call.ID, Name: call.Name, Output: text}, nil
}

// parseArguments decodes the JSON arguments of a tool call. An empty
// string means no arguments.
func parseArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments JSON: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// resultText renders a tool result for the model: strings verbatim,
// anything else as JSON.
func resultText(out any) (string, error) {
	if s, ok := out.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}
