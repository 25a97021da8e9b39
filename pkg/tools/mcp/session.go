package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Dialer creates the transport used to reach an endpoint. Tests swap it
// for in-memory transports.
type Dialer func(ctx context.Context, ep Endpoint, token string) (mcp.Transport, error)

// DialHTTP creates an SSE or streamable HTTP transport from the endpoint
// registration, carrying the bearer credential and custom headers.
func DialHTTP(_ context.Context, ep Endpoint, token string) (mcp.Transport, error) {
	httpClient := buildHTTPClient(ep, token)

	switch ep.Transport {
	case TransportSSE, "":
		transport := &mcp.SSEClientTransport{Endpoint: ep.URL}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	case TransportStreamable:
		transport := &mcp.StreamableClientTransport{Endpoint: ep.URL, MaxRetries: 1}
		if httpClient != nil {
			transport.HTTPClient = httpClient
		}
		return transport, nil

	default:
		return nil, fmt.Errorf("unsupported transport type %q", ep.Transport)
	}
}

// remoteTool is one entry of an endpoint's catalog as the endpoint names it.
type remoteTool struct {
	name        string
	description string
	schema      json.RawMessage
}

// session is a live connection to one endpoint.
type session struct {
	endpoint string
	cs       *mcp.ClientSession
}

// openSession performs the protocol handshake over transport.
func openSession(ctx context.Context, endpoint string, transport mcp.Transport) (*session, error) {
	client := mcp.NewClient(
		&mcp.Implementation{
			Name:    "credentialwatch",
			Version: "1.0.0",
		},
		&mcp.ClientOptions{
			Capabilities: &mcp.ClientCapabilities{},
		},
	)

	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to endpoint %q: %w", endpoint, err)
	}
	return &session{endpoint: endpoint, cs: cs}, nil
}

// listTools fetches the endpoint's catalog.
func (s *session) listTools(ctx context.Context) ([]remoteTool, error) {
	var out []remoteTool
	for tool, err := range s.cs.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("listing tools from %q: %w", s.endpoint, err)
		}
		rt := remoteTool{name: tool.Name, description: tool.Description}
		if tool.InputSchema != nil {
			data, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("marshaling input schema of %q: %w", tool.Name, err)
			}
			rt.schema = data
		}
		out = append(out, rt)
	}
	return out, nil
}

// call invokes a tool and decodes its result. A result flagged as an error
// by the endpoint is returned as an error carrying the result text.
func (s *session) call(ctx context.Context, name string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	result, err := s.cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, err
	}
	if result.IsError {
		text := resultText(result)
		if text == "" {
			text = "tool reported an error"
		}
		return nil, errors.New(text)
	}
	return decodeResult(result), nil
}

func (s *session) close() error {
	return s.cs.Close()
}

// decodeResult prefers structured content; otherwise the text content is
// decoded as JSON when possible and returned verbatim when not.
func decodeResult(result *mcp.CallToolResult) any {
	if result.StructuredContent != nil {
		return result.StructuredContent
	}
	text := resultText(result)
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v
	}
	return text
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
