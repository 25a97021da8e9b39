package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhuss/credentialwatch/pkg/tools"
)

func TestToolsFromCatalog(t *testing.T) {
	got := ToolsFromCatalog([]tools.Descriptor{
		{Name: "alerts_log_alert", Endpoint: "alerts", Description: "Log an alert", InputSchema: json.RawMessage(`{"type":"object","required":["message"]}`)},
		{Name: "ping", Endpoint: "directory"},
	})
	require.Len(t, got, 2)

	assert.Equal(t, "function", got[0].Type)
	assert.Equal(t, "alerts_log_alert", got[0].Function.Name)
	assert.Equal(t, "Log an alert", got[0].Function.Description)
	assert.JSONEq(t, `{"type":"object","required":["message"]}`, string(got[0].Function.Parameters))

	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(got[1].Function.Parameters))
}

func TestToolsFromCatalog_Empty(t *testing.T) {
	assert.Empty(t, ToolsFromCatalog(nil))
}
