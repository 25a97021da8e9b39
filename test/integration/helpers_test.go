// Package integration runs credentialwatch end to end: the demo tool
// endpoints are served over SSE and a mock Chat Completions backend stands
// in for the language model, all started in-process with
// net/http/httptest.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/credentialwatch/pkg/demo"
	"github.com/rhuss/credentialwatch/pkg/engine"
	"github.com/rhuss/credentialwatch/pkg/provider/openaicompat"
	"github.com/rhuss/credentialwatch/pkg/sweep"
	"github.com/rhuss/credentialwatch/pkg/tools/mcp"
	transporthttp "github.com/rhuss/credentialwatch/pkg/transport/http"
)

var testEnv *TestEnvironment

// TestEnvironment holds the servers shared by all integration tests.
type TestEnvironment struct {
	Roster      *demo.Roster
	Endpoints   []*httptest.Server
	MockBackend *httptest.Server
	Tools       *mcp.Client
	Server      *httptest.Server
}

func TestMain(m *testing.M) {
	env, err := setupTestEnvironment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "setting up integration environment:", err)
		os.Exit(1)
	}
	testEnv = env
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

func setupTestEnvironment() (*TestEnvironment, error) {
	env := &TestEnvironment{Roster: demo.NewRoster()}

	var endpoints []mcp.Endpoint
	for _, name := range []string{demo.Directory, demo.Credentials, demo.Alerts} {
		server, err := demo.NewServer(name, env.Roster)
		if err != nil {
			return nil, err
		}
		handler, err := demo.Handler(server, "sse")
		if err != nil {
			return nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/sse", handler)
		ts := httptest.NewServer(mux)
		env.Endpoints = append(env.Endpoints, ts)
		endpoints = append(endpoints, mcp.Endpoint{Name: name, Transport: mcp.TransportSSE, URL: ts.URL + "/sse"})
	}

	env.Tools = mcp.New(mcp.Config{
		Endpoints:      endpoints,
		ConnectTimeout: 5 * time.Second,
		CallTimeout:    5 * time.Second,
		MockMode:       mcp.MockOff,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := env.Tools.Connect(ctx); err != nil {
		return nil, err
	}

	env.MockBackend = startMockBackend()
	prov, err := openaicompat.New(openaicompat.Config{
		BaseURL: env.MockBackend.URL + "/v1",
		APIKey:  "test-key",
	})
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(prov, env.Tools, engine.Config{Model: "mock-model", MaxTurns: 3}, nil)
	if err != nil {
		return nil, err
	}

	adapter := transporthttp.NewAdapter(sweep.New(env.Tools, nil), eng, env.Tools, transporthttp.DefaultConfig())
	env.Server = httptest.NewServer(adapter.Handler())
	return env, nil
}

// Teardown stops every server and closes the endpoint sessions.
func (env *TestEnvironment) Teardown() {
	if env.Server != nil {
		env.Server.Close()
	}
	if env.Tools != nil {
		env.Tools.Close()
	}
	if env.MockBackend != nil {
		env.MockBackend.Close()
	}
	for _, ts := range env.Endpoints {
		ts.Close()
	}
}

// postJSON sends a POST request with JSON body and returns the response.
func postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	resp, err := http.Post(testEnv.Server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// decodeJSON reads the response body and decodes it into the target.
func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

// --- Mock backend ---

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	} `json:"tools"`
}

// startMockBackend mimics a Chat Completions API. A first round asks for
// the expiring credentials tool; once a tool result is present it answers
// with the number of expiring items. Messages containing "loop" never get
// an answer.
func startMockBackend() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
			return
		}

		loop := false
		var toolResult string
		for _, msg := range req.Messages {
			s, _ := msg.Content.(string)
			switch msg.Role {
			case "user":
				loop = loop || strings.Contains(strings.ToLower(s), "loop")
			case "tool":
				toolResult = s
			}
		}

		if toolResult == "" || loop {
			writeToolCall(w, req)
			return
		}

		var result struct {
			Expiring []any `json:"expiring"`
		}
		json.Unmarshal([]byte(toolResult), &result)
		writeAnswer(w, req.Model, fmt.Sprintf("%d credentials expire within 30 days.", len(result.Expiring)))
	})
	return httptest.NewServer(mux)
}

func writeToolCall(w http.ResponseWriter, req chatRequest) {
	name := "list_expiring_credentials"
	for _, tool := range req.Tools {
		if strings.HasSuffix(tool.Function.Name, "list_expiring_credentials") {
			name = tool.Function.Name
		}
	}
	writeCompletion(w, req.Model, map[string]any{
		"role":    "assistant",
		"content": nil,
		"tool_calls": []map[string]any{{
			"id":   "call_1",
			"type": "function",
			"function": map[string]any{
				"name":      name,
				"arguments": `{"window_days":30}`,
			},
		}},
	}, "tool_calls")
}

func writeAnswer(w http.ResponseWriter, model, text string) {
	writeCompletion(w, model, map[string]any{"role": "assistant", "content": text}, "stop")
}

func writeCompletion(w http.ResponseWriter, model string, message map[string]any, finish string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       message,
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
}
