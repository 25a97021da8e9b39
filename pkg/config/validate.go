package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// All problems are reported at once, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}

	switch c.Model.Provider {
	case "openai", "eino":
	default:
		errs = append(errs, fmt.Errorf("model.provider must be \"openai\" or \"eino\", got %q", c.Model.Provider))
	}
	if c.Model.Name == "" {
		errs = append(errs, fmt.Errorf("model.name is required"))
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature must be in 0..2, got %v", c.Model.Temperature))
	}
	if c.Model.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("model.max_tokens must be >= 0, got %d", c.Model.MaxTokens))
	}

	if c.Engine.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_turns must be > 0, got %d", c.Engine.MaxTurns))
	}
	if c.Sweep.WindowDays <= 0 || c.Sweep.WindowDays > 3650 {
		errs = append(errs, fmt.Errorf("sweep.window_days must be in 1..3650, got %d", c.Sweep.WindowDays))
	}

	switch c.MCP.MockMode {
	case "auto", "on", "off":
	default:
		errs = append(errs, fmt.Errorf("mcp.mock_mode must be \"auto\", \"on\" or \"off\", got %q", c.MCP.MockMode))
	}
	if c.MCP.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("mcp.connect_timeout must be > 0"))
	}
	if c.MCP.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("mcp.call_timeout must be > 0"))
	}

	seen := make(map[string]bool, len(c.MCP.Endpoints))
	for i, ep := range c.MCP.Endpoints {
		if ep.Name == "" {
			errs = append(errs, fmt.Errorf("mcp.endpoints[%d].name is required", i))
		} else if seen[ep.Name] {
			errs = append(errs, fmt.Errorf("mcp.endpoints[%d].name %q is duplicated", i, ep.Name))
		}
		seen[ep.Name] = true

		if ep.URL == "" {
			errs = append(errs, fmt.Errorf("mcp.endpoints[%d].url is required", i))
		}
		switch ep.Transport {
		case "", "sse", "streamable-http":
		default:
			errs = append(errs, fmt.Errorf("mcp.endpoints[%d].transport must be \"sse\" or \"streamable-http\", got %q", i, ep.Transport))
		}
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
