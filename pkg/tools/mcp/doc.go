// Package mcp is the tool client: it connects to the directory, credential
// database and alerting endpoints over the MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk), discovers their tools into one
// flattened catalog and executes calls against it.
//
// Callers address tools by a short logical operation name such as
// "log_alert". The name is resolved with tools.Resolve, so catalogs that
// prefix or suffix their tool names ("alerts_log_alert", "log_alert_tool")
// still match. Unreachable endpoints and unresolvable operations degrade to
// the canned payloads of tools.MockResponse; failures of a tool that was
// found and called are returned as *tools.InvocationError.
//
// Endpoints are configured via Endpoint structs, which specify the logical
// name, transport type (SSE or streamable-http), URL, and optional headers.
package mcp
