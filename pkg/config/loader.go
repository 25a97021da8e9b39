package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/rhuss/credentialwatch/pkg/debug"
)

// dotenvFiles are loaded in order. Variables already present in the
// environment are never overwritten, so earlier files win.
var dotenvFiles = []string{".env.local", ".env"}

// envOverrides lists the environment variables that override config
// values. Empty values leave the config untouched.
type envOverrides struct {
	DirectoryURL   string `envconfig:"NPI_MCP_URL"`
	CredentialsURL string `envconfig:"CRED_DB_MCP_URL"`
	AlertsURL      string `envconfig:"ALERT_MCP_URL"`
	MCPAuthToken   string `envconfig:"MCP_AUTH_TOKEN"`
	HFToken        string `envconfig:"HF_TOKEN"`
	MockMode       string `envconfig:"CREDENTIALWATCH_MOCK_MODE"`
	SpaceID        string `envconfig:"SPACE_ID"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	Model         string `envconfig:"CREDENTIALWATCH_MODEL"`
	Provider      string `envconfig:"CREDENTIALWATCH_PROVIDER"`

	Port       int `envconfig:"CREDENTIALWATCH_PORT"`
	MaxTurns   int `envconfig:"CREDENTIALWATCH_MAX_TURNS"`
	WindowDays int `envconfig:"CREDENTIALWATCH_WINDOW_DAYS"`
}

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CREDENTIALWATCH_CONFIG env, ./config.yaml, /etc/credentialwatch/config.yaml)
//  3. .env.local and .env in the working directory
//  4. Environment variable overrides
//  5. File reference resolution (_file suffix)
//  6. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CREDENTIALWATCH_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/credentialwatch/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("CREDENTIALWATCH_CONFIG"); envPath != "" {
		return envPath
	}
	for _, path := range []string{"config.yaml", "/etc/credentialwatch/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads the dotenv files that exist. Missing files are skipped.
func loadDotEnv() error {
	for _, name := range dotenvFiles {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", name, err)
		}
		debug.Log("config", "loaded dotenv file", "path", name)
	}
	return nil
}

// applyEnvOverrides maps environment variables onto config fields.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	setEndpointURL(cfg, EndpointDirectory, env.DirectoryURL)
	setEndpointURL(cfg, EndpointCredentials, env.CredentialsURL)
	setEndpointURL(cfg, EndpointAlerts, env.AlertsURL)

	switch {
	case env.MCPAuthToken != "":
		cfg.MCP.AuthToken = env.MCPAuthToken
	case env.HFToken != "" && cfg.MCP.AuthToken == "":
		cfg.MCP.AuthToken = env.HFToken
	}
	if env.MockMode != "" {
		cfg.MCP.MockMode = strings.ToLower(strings.TrimSpace(env.MockMode))
	}
	if env.SpaceID != "" {
		cfg.Hosted = true
	}

	if env.OpenAIAPIKey != "" {
		cfg.Model.APIKey = env.OpenAIAPIKey
	}
	if env.OpenAIBaseURL != "" {
		cfg.Model.BaseURL = env.OpenAIBaseURL
	}
	if env.Model != "" {
		cfg.Model.Name = env.Model
	}
	if env.Provider != "" {
		cfg.Model.Provider = env.Provider
	}

	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.MaxTurns != 0 {
		cfg.Engine.MaxTurns = env.MaxTurns
	}
	if env.WindowDays != 0 {
		cfg.Sweep.WindowDays = env.WindowDays
	}
	return nil
}

// setEndpointURL points the named endpoint at url, adding an SSE endpoint
// when none is configured under that name.
func setEndpointURL(cfg *Config, name, url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	for i := range cfg.MCP.Endpoints {
		if cfg.MCP.Endpoints[i].Name == name {
			cfg.MCP.Endpoints[i].URL = url
			return
		}
	}
	cfg.MCP.Endpoints = append(cfg.MCP.Endpoints, EndpointConfig{Name: name, Transport: "sse", URL: url})
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// A value field that is already set is left alone.
func resolveFileReferences(cfg *Config) error {
	if cfg.Model.APIKeyFile != "" && cfg.Model.APIKey == "" {
		val, err := readSecretFile(cfg.Model.APIKeyFile)
		if err != nil {
			return fmt.Errorf("model.api_key_file: %w", err)
		}
		cfg.Model.APIKey = val
	}

	if cfg.MCP.AuthTokenFile != "" && cfg.MCP.AuthToken == "" {
		val, err := readSecretFile(cfg.MCP.AuthTokenFile)
		if err != nil {
			return fmt.Errorf("mcp.auth_token_file: %w", err)
		}
		cfg.MCP.AuthToken = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
