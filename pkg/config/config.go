// Package config provides unified configuration for credentialwatch.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. .env files loaded into the process environment
//  4. Environment variable overrides
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for credentialwatch.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Model         ModelConfig         `yaml:"model"`
	Engine        EngineConfig        `yaml:"engine"`
	Sweep         SweepConfig         `yaml:"sweep"`
	MCP           MCPConfig           `yaml:"mcp"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`

	// Hosted marks a hosted environment (set from SPACE_ID). Together with
	// loopback-only endpoints it switches the tool client to mock mode
	// when mcp.mock_mode is "auto".
	Hosted bool `yaml:"hosted"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 7860
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// ModelConfig holds language model settings.
type ModelConfig struct {
	Provider    string        `yaml:"provider"` // "openai" or "eino", default: "openai"
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	APIKeyFile  string        `yaml:"api_key_file"` // _file variant for api_key
	Name        string        `yaml:"name"`         // default: "gpt-4o"
	Temperature float64       `yaml:"temperature"`  // default: 0
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"` // default: 120s
}

// EngineConfig holds conversation loop settings.
type EngineConfig struct {
	MaxTurns        int    `yaml:"max_turns"` // default: 10
	SystemPrompt    string `yaml:"system_prompt"`
	SequentialTools bool   `yaml:"sequential_tools"`
}

// SweepConfig holds expiry sweep settings.
type SweepConfig struct {
	WindowDays int `yaml:"window_days"` // default: 90
}

// MCPConfig holds tool endpoint settings.
type MCPConfig struct {
	Endpoints      []EndpointConfig `yaml:"endpoints"`
	AuthToken      string           `yaml:"auth_token"`
	AuthTokenFile  string           `yaml:"auth_token_file"` // _file variant for auth_token
	ConnectTimeout time.Duration    `yaml:"connect_timeout"` // default: 10s
	CallTimeout    time.Duration    `yaml:"call_timeout"`    // default: 30s
	MockMode       string           `yaml:"mock_mode"`       // "auto", "on" or "off", default: "auto"
}

// EndpointConfig describes a single tool endpoint.
type EndpointConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"` // "sse" or "streamable-http"
	URL       string            `yaml:"url"`
	Headers   map[string]string `yaml:"headers"`
}

// LoggingConfig holds log output settings. The CREDENTIALWATCH_LOG_LEVEL
// and CREDENTIALWATCH_DEBUG variables win over these at setup time.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Debug  string `yaml:"debug"`  // comma separated debug categories
	Format string `yaml:"format"` // "text" or "json", default: "text"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Endpoint names, matching the tool client's endpoint identifiers.
const (
	EndpointDirectory   = "directory"
	EndpointCredentials = "credentials"
	EndpointAlerts      = "alerts"
)

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            7860,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			Provider: "openai",
			Name:     "gpt-4o",
			Timeout:  120 * time.Second,
		},
		Engine: EngineConfig{
			MaxTurns: 10,
		},
		Sweep: SweepConfig{
			WindowDays: 90,
		},
		MCP: MCPConfig{
			Endpoints: []EndpointConfig{
				{Name: EndpointDirectory, Transport: "sse", URL: "http://localhost:8001/sse"},
				{Name: EndpointCredentials, Transport: "sse", URL: "http://localhost:8002/sse"},
				{Name: EndpointAlerts, Transport: "sse", URL: "http://localhost:8003/sse"},
			},
			ConnectTimeout: 10 * time.Second,
			CallTimeout:    30 * time.Second,
			MockMode:       "auto",
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
