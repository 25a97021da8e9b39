package integration

import (
	"io"
	"net/http"
	"testing"

	"github.com/rhuss/credentialwatch/pkg/api"
)

func TestHealth(t *testing.T) {
	resp, err := http.Get(testEnv.Server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 \"ok\"", resp.StatusCode, body)
	}
}

func TestToolsDiscoveredOverSSE(t *testing.T) {
	resp, err := http.Get(testEnv.Server.URL + "/api/tools")
	if err != nil {
		t.Fatalf("GET /api/tools: %v", err)
	}
	var tools api.ToolsResponse
	decodeJSON(t, resp, &tools)

	if !tools.Connected || tools.MockMode {
		t.Fatalf("connected=%v mock_mode=%v, want live connection", tools.Connected, tools.MockMode)
	}
	if len(tools.Tools) != 6 {
		t.Errorf("got %d tools, want 6", len(tools.Tools))
	}
	for _, ep := range tools.Endpoints {
		if !ep.Connected || ep.Tools != 2 {
			t.Errorf("endpoint %s: connected=%v tools=%d", ep.Name, ep.Connected, ep.Tools)
		}
	}
}

func TestSweepCreatesAlerts(t *testing.T) {
	before := len(testEnv.Roster.OpenAlerts(0, ""))

	resp := postJSON(t, "/api/sweep", api.SweepRequest{WindowDays: 30})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/sweep status = %d", resp.StatusCode)
	}
	var res api.SweepResponse
	decodeJSON(t, resp, &res)

	if len(res.Errors) != 0 {
		t.Fatalf("sweep errors: %v", res.Errors)
	}
	if res.ItemsScanned != 2 || res.AlertsCreated != 2 {
		t.Errorf("scanned=%d alerts=%d, want 2 and 2", res.ItemsScanned, res.AlertsCreated)
	}
	want := "Sweep completed. Scanned 2 expiring items. Created 2 alerts."
	if res.Summary != want {
		t.Errorf("summary = %q, want %q", res.Summary, want)
	}

	// Both items expire within 30 days.
	critical := testEnv.Roster.OpenAlerts(0, "critical")
	if got := len(testEnv.Roster.OpenAlerts(0, "")) - before; got != 2 {
		t.Errorf("roster gained %d alerts, want 2", got)
	}
	if len(critical) < 2 {
		t.Errorf("got %d critical alerts, want at least 2", len(critical))
	}
}

func TestChatAnswersWithToolResults(t *testing.T) {
	resp := postJSON(t, "/api/chat", api.ChatRequest{Message: "Which credentials expire this month?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/chat status = %d", resp.StatusCode)
	}
	var chat api.ChatResponse
	decodeJSON(t, resp, &chat)

	want := "2 credentials expire within 30 days."
	if chat.Reply != want {
		t.Errorf("reply = %q, want %q", chat.Reply, want)
	}
}

func TestChatLoopExceeded(t *testing.T) {
	resp := postJSON(t, "/api/chat", api.ChatRequest{Message: "loop forever"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("POST /api/chat status = %d, want 422", resp.StatusCode)
	}
	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || errResp.Error.Type != api.ErrorTypeLoopExceeded {
		t.Errorf("error = %+v, want loop_exceeded", errResp.Error)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	resp := postJSON(t, "/api/chat", api.ChatRequest{Message: ""})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("POST /api/chat status = %d, want 400", resp.StatusCode)
	}
}
