// Package demo provides MCP servers for the directory, credentials and
// alerts endpoints, backed by an in-memory roster. They power the
// mcp-test-server command and the integration tests.
//
// Tool names carry the endpoint as a prefix (directory_search_providers,
// credentials_list_expiring_credentials, ...), the way many hosted MCP
// servers name their tools.
package demo
