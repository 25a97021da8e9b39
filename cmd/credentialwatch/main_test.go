package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhuss/credentialwatch/pkg/config"
	"github.com/rhuss/credentialwatch/pkg/tools/mcp"
)

// isolate keeps the commands away from the caller's environment and any
// config or dotenv files in the working directory.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NPI_MCP_URL", "CRED_DB_MCP_URL", "ALERT_MCP_URL",
		"MCP_AUTH_TOKEN", "HF_TOKEN", "CREDENTIALWATCH_MOCK_MODE", "SPACE_ID",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "CREDENTIALWATCH_MODEL", "CREDENTIALWATCH_PROVIDER",
		"CREDENTIALWATCH_CONFIG", "CREDENTIALWATCH_DEBUG", "CREDENTIALWATCH_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return root.ExecuteContext(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepCommandInMockMode(t *testing.T) {
	isolate(t)
	assert.NoError(t, execute(t, "--mock", "on", "--json", "sweep", "--window-days", "30"))
}

func TestToolsCommandInMockMode(t *testing.T) {
	isolate(t)
	assert.NoError(t, execute(t, "--mock", "on", "tools"))
}

func TestInvalidMockFlag(t *testing.T) {
	isolate(t)
	assert.Error(t, execute(t, "--mock", "sometimes", "tools"))
}

func TestChatRequiresModel(t *testing.T) {
	isolate(t)
	err := execute(t, "--mock", "on", "chat", "which", "licenses", "expire?")
	assert.ErrorIs(t, err, errNoModel)
}

func TestChatRejectsBlankMessage(t *testing.T) {
	isolate(t)
	err := execute(t, "chat", "   ")

	var exitErr exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.code)
}

func TestNewAppWithoutModel(t *testing.T) {
	cfg := new(config.Config)
	*cfg = config.Defaults()
	cfg.MCP.MockMode = "on"

	a, err := newApp(context.Background(), cfg, discardLogger(), false)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.engine)
	assert.Nil(t, a.provider)
	assert.NotNil(t, a.sweep)

	_, err = newApp(context.Background(), cfg, discardLogger(), true)
	assert.ErrorIs(t, err, errNoModel)
}

func TestNewAppWithLocalModel(t *testing.T) {
	cfg := new(config.Config)
	*cfg = config.Defaults()
	cfg.MCP.MockMode = "on"
	cfg.Model.BaseURL = "http://127.0.0.1:8000/v1"

	a, err := newApp(context.Background(), cfg, discardLogger(), true)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.engine)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		mc      config.ModelConfig
		wantErr error
		want    string
	}{
		{name: "openai without key or base url", mc: config.ModelConfig{Provider: "openai"}, wantErr: errNoModel},
		{name: "openai with key", mc: config.ModelConfig{Provider: "openai", APIKey: "sk-test"}, want: "openai"},
		{name: "openai with local base url", mc: config.ModelConfig{Provider: "openai", BaseURL: "http://localhost:8000"}, want: "openai"},
		{name: "eino without key", mc: config.ModelConfig{Provider: "eino", BaseURL: "http://localhost:8000"}, wantErr: errNoModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newProvider(context.Background(), tt.mc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer p.Close()
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestToolClientConfig(t *testing.T) {
	cfg := new(config.Config)
	*cfg = config.Defaults()
	cfg.Hosted = true
	cfg.MCP.AuthToken = "secret"
	cfg.MCP.MockMode = "off"
	cfg.MCP.Endpoints = []config.EndpointConfig{
		{Name: "directory", Transport: "sse", URL: "http://npi:8001/sse", Headers: map[string]string{"X-Team": "ops"}},
	}

	got := toolClientConfig(cfg)

	assert.Equal(t, mcp.MockOff, got.MockMode)
	assert.True(t, got.Hosted)
	assert.Equal(t, "secret", got.AuthToken)
	assert.Equal(t, cfg.MCP.CallTimeout, got.CallTimeout)
	require.Len(t, got.Endpoints, 1)
	assert.Equal(t, mcp.Endpoint{
		Name:      "directory",
		Transport: "sse",
		URL:       "http://npi:8001/sse",
		Headers:   map[string]string{"X-Team": "ops"},
	}, got.Endpoints[0])
}
