package tools

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Logical endpoint names. The endpoint name is used as the hint for mock
// dispatch and as the prefix for qualified duplicate tool names.
const (
	EndpointDirectory   = "directory"
	EndpointCredentials = "credentials"
	EndpointAlerts      = "alerts"
)

// Operation names known to the workflows.
const (
	OpSearchProviders         = "search_providers"
	OpGetProviderByNPI        = "get_provider_by_npi"
	OpListExpiringCredentials = "list_expiring_credentials"
	OpGetProviderSnapshot     = "get_provider_snapshot"
	OpLogAlert                = "log_alert"
	OpGetOpenAlerts           = "get_open_alerts"
)

// Descriptor describes one invocable operation in the catalog.
type Descriptor struct {
	// Name is the qualified catalog name. It equals RemoteName unless two
	// endpoints expose the same name, in which case later registrations
	// are prefixed with "<endpoint>_".
	Name string `json:"name"`

	// Endpoint is the logical name of the endpoint that owns the tool.
	Endpoint string `json:"endpoint"`

	// RemoteName is the name the endpoint itself uses for the tool.
	RemoteName string `json:"remote_name"`

	Description string `json:"description,omitempty"`

	// InputSchema is the JSON Schema of the tool arguments.
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// ToolCall represents a model's request to invoke a tool.
type ToolCall struct {
	// ID is the unique call identifier (from the model, e.g., "call_abc123").
	ID string

	// Name is the tool function name.
	Name string

	// Arguments is the JSON-encoded arguments string.
	Arguments string
}

// ToolResult represents the output of a tool execution.
type ToolResult struct {
	// CallID matches the originating ToolCall.ID.
	CallID string

	// Name is the tool name the call was made with.
	Name string

	// Output is the tool output content (text).
	Output string
}

// ErrToolNotFound is returned by catalog lookups that match nothing.
var ErrToolNotFound = errors.New("tool not found")

// InvocationError is a Tool Invocation Failure: the tool was resolved and
// called, but the call itself failed (transport fault, timeout, remote
// error result, or an unreadable response).
type InvocationError struct {
	Endpoint  string
	Operation string
	Tool      string
	Err       error
}

func (e *InvocationError) Error() string {
	if e.Tool != "" && e.Tool != e.Operation {
		return fmt.Sprintf("invoking %s/%s (as %q): %v", e.Endpoint, e.Operation, e.Tool, e.Err)
	}
	return fmt.Sprintf("invoking %s/%s: %v", e.Endpoint, e.Operation, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
