package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/engine"
	"github.com/rhuss/credentialwatch/pkg/sweep"
	"github.com/rhuss/credentialwatch/pkg/tools"
	toolmcp "github.com/rhuss/credentialwatch/pkg/tools/mcp"
	"github.com/rhuss/credentialwatch/pkg/transport"
)

type fakeSweeper struct {
	windows []int
	result  sweep.Result
	err     error
}

func (f *fakeSweeper) Run(_ context.Context, windowDays int) (sweep.Result, error) {
	f.windows = append(f.windows, windowDays)
	if f.err != nil {
		return sweep.Result{}, f.err
	}
	res := f.result
	res.WindowDays = windowDays
	return res, nil
}

type fakeConversation struct {
	message string
	history []api.Exchange
	reply   string
	err     error
}

func (f *fakeConversation) Turn(_ context.Context, message string, history []api.Exchange) (string, error) {
	f.message = message
	f.history = history
	return f.reply, f.err
}

type fakeDirectory struct {
	connects   int
	connectErr error
}

func (f *fakeDirectory) Connect(context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeDirectory) Tools() []tools.Descriptor { return tools.MockCatalog() }

func (f *fakeDirectory) Status() toolmcp.Status {
	return toolmcp.Status{
		Connected: true,
		MockMode:  true,
		Endpoints: []toolmcp.EndpointStatus{
			{Name: "directory", URL: "http://localhost:8001/sse", Error: "connection refused"},
		},
	}
}

type fixture struct {
	sweeper *fakeSweeper
	conv    *fakeConversation
	dir     *fakeDirectory
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sweeper: &fakeSweeper{result: sweep.Result{
			RunID:         "run-1",
			Summary:       "Sweep completed. Found 1 expiring credentials. Created 1 alerts.",
			AlertsCreated: 1,
			ItemsScanned:  1,
		}},
		conv: &fakeConversation{reply: "Dr. Smith is active."},
		dir:  &fakeDirectory{},
	}
	cfg := DefaultConfig()
	cfg.DefaultWindowDays = 60
	f.handler = NewAdapter(f.sweeper, f.conv, f.dir, cfg).Handler()
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestSweepUsesDefaultWindow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/sweep", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, 60, resp.WindowDays)
	assert.Equal(t, 1, resp.AlertsCreated)
	assert.NotNil(t, resp.Errors)
	assert.Equal(t, []int{60}, f.sweeper.windows)
	assert.Equal(t, 1, f.dir.connects)
	assert.NotEmpty(t, rec.Header().Get(transport.RequestIDHeader))
}

func TestSweepExplicitWindow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/sweep", `{"window_days": 30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{30}, f.sweeper.windows)
	assert.Contains(t, rec.Body.String(), `"errors":[]`)
}

func TestSweepRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/sweep", `{"window_days": -5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "window_days", decodeError(t, rec).Param)

	rec = f.do(http.MethodPost, "/api/sweep", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, f.sweeper.windows)
}

func TestSweepCancelled(t *testing.T) {
	f := newFixture(t)
	f.sweeper.err = context.Canceled

	rec := f.do(http.MethodPost, "/api/sweep", "{}")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChatReturnsReply(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/chat", `{"message":"Is Dr. Smith active?","history":[{"user":"hi","assistant":"hello"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Dr. Smith is active.", resp.Reply)
	assert.Equal(t, "Is Dr. Smith active?", f.conv.message)
	assert.Equal(t, []api.Exchange{{User: "hi", Assistant: "hello"}}, f.conv.history)
	assert.Equal(t, 1, f.dir.connects)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   api.ErrorType
	}{
		{"loop exceeded", fmt.Errorf("%w: no answer after 10 model rounds", engine.ErrLoopExceeded), http.StatusUnprocessableEntity, api.ErrorTypeLoopExceeded},
		{"tool failure", &tools.InvocationError{Endpoint: "alerts", Operation: "log_alert", Err: errors.New("reset")}, http.StatusBadGateway, api.ErrorTypeToolInvocationFailed},
		{"model failure", api.NewModelError("rate limited upstream"), http.StatusInternalServerError, api.ErrorTypeModelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.conv.err = tt.err

			rec := f.do(http.MethodPost, "/api/chat", `{"message":"hi"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decodeError(t, rec).Type)
		})
	}
}

func TestChatValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/chat", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message", decodeError(t, rec).Param)

	rec = f.do(http.MethodPost, "/api/chat", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsWrongContentType(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatBodyTooLarge(t *testing.T) {
	f := newFixture(t)
	cfg := DefaultConfig()
	cfg.MaxBodySize = 16
	h := NewAdapter(f.sweeper, f.conv, f.dir, cfg).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"this body is far too long"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChatDisabledWithoutModel(t *testing.T) {
	f := newFixture(t)
	h := NewAdapter(f.sweeper, nil, f.dir, DefaultConfig()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConnectErrorIsReported(t *testing.T) {
	f := newFixture(t)
	f.dir.connectErr = context.DeadlineExceeded

	rec := f.do(http.MethodPost, "/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "request timed out", decodeError(t, rec).Message)
	assert.Empty(t, f.conv.message)
}

func TestToolsListing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.ToolsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Connected)
	assert.True(t, resp.MockMode)
	require.Len(t, resp.Endpoints, 1)
	assert.Equal(t, "connection refused", resp.Endpoints[0].Error)
	assert.Len(t, resp.Tools, len(tools.MockCatalog()))
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "credentialwatch_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/responses", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/sweep", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
