package api

import "encoding/json"

// SweepRequest starts an expiry sweep. A zero WindowDays uses the
// configured default.
type SweepRequest struct {
	WindowDays int `json:"window_days,omitempty"`
}

// SweepResponse reports the outcome of an expiry sweep.
type SweepResponse struct {
	RunID         string   `json:"run_id"`
	Summary       string   `json:"summary"`
	AlertsCreated int      `json:"alerts_created"`
	Errors        []string `json:"errors"`
	ItemsScanned  int      `json:"items_scanned"`
	WindowDays    int      `json:"window_days"`
}

// Exchange is one prior user/assistant pair of a conversation.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatRequest asks a question. History holds the earlier exchanges of the
// conversation, oldest first.
type ChatRequest struct {
	Message string     `json:"message"`
	History []Exchange `json:"history,omitempty"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ToolInfo describes one catalog entry.
type ToolInfo struct {
	Name        string          `json:"name"`
	Endpoint    string          `json:"endpoint"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// EndpointInfo describes the connection state of one endpoint.
type EndpointInfo struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
	Tools     int    `json:"tools"`
	Error     string `json:"error,omitempty"`
}

// ToolsResponse lists the catalog and the endpoint states.
type ToolsResponse struct {
	Connected bool           `json:"connected"`
	MockMode  bool           `json:"mock_mode"`
	Endpoints []EndpointInfo `json:"endpoints"`
	Tools     []ToolInfo     `json:"tools"`
}
