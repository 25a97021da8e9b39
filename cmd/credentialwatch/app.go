package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhuss/credentialwatch/pkg/config"
	"github.com/rhuss/credentialwatch/pkg/engine"
	"github.com/rhuss/credentialwatch/pkg/provider"
	einoprovider "github.com/rhuss/credentialwatch/pkg/provider/eino"
	"github.com/rhuss/credentialwatch/pkg/provider/openaicompat"
	"github.com/rhuss/credentialwatch/pkg/sweep"
	"github.com/rhuss/credentialwatch/pkg/tools/mcp"
)

// errNoModel means no language model is configured.
var errNoModel = errors.New("no language model configured: set OPENAI_API_KEY or model.base_url")

// app holds the components shared by the commands.
type app struct {
	tools    *mcp.Client
	sweep    *sweep.Pipeline
	provider provider.Provider
	engine   *engine.Engine
	logger   *slog.Logger
}

// newApp wires the tool client, the sweep pipeline and, when a model is
// configured, the conversation engine. With requireModel a missing model
// is an error; otherwise the engine is left nil.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, requireModel bool) (*app, error) {
	tc := mcp.New(toolClientConfig(cfg), mcp.WithLogger(logger))
	a := &app{
		tools:  tc,
		sweep:  sweep.New(tc, logger),
		logger: logger,
	}

	p, err := newProvider(ctx, cfg.Model)
	switch {
	case errors.Is(err, errNoModel) && !requireModel:
		logger.Warn("chat disabled", "reason", err.Error())
		return a, nil
	case err != nil:
		return nil, err
	}
	a.provider = p

	temperature := cfg.Model.Temperature
	a.engine, err = engine.New(p, tc, engine.Config{
		Model:           cfg.Model.Name,
		Temperature:     &temperature,
		MaxTokens:       cfg.Model.MaxTokens,
		MaxTurns:        cfg.Engine.MaxTurns,
		SystemPrompt:    cfg.Engine.SystemPrompt,
		SequentialTools: cfg.Engine.SequentialTools,
	}, logger)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return a, nil
}

// Close releases the endpoint sessions and the provider.
func (a *app) Close() {
	if err := a.tools.Close(); err != nil {
		a.logger.Warn("closing tool client", "error", err)
	}
	if a.provider != nil {
		a.provider.Close()
	}
}

func toolClientConfig(cfg *config.Config) mcp.Config {
	endpoints := make([]mcp.Endpoint, 0, len(cfg.MCP.Endpoints))
	for _, ep := range cfg.MCP.Endpoints {
		endpoints = append(endpoints, mcp.Endpoint{
			Name:      ep.Name,
			Transport: ep.Transport,
			URL:       ep.URL,
			Headers:   ep.Headers,
		})
	}
	return mcp.Config{
		Endpoints:      endpoints,
		AuthToken:      cfg.MCP.AuthToken,
		ConnectTimeout: cfg.MCP.ConnectTimeout,
		CallTimeout:    cfg.MCP.CallTimeout,
		MockMode:       mcp.MockPolicy(cfg.MCP.MockMode),
		Hosted:         cfg.Hosted,
	}
}

// newProvider builds the configured language model provider. The openai
// provider accepts a missing API key when a base URL points at a
// compatible local server.
func newProvider(ctx context.Context, mc config.ModelConfig) (provider.Provider, error) {
	hasKey := strings.TrimSpace(mc.APIKey) != ""

	switch mc.Provider {
	case "eino":
		if !hasKey {
			return nil, errNoModel
		}
		p, err := einoprovider.New(ctx, einoprovider.Config{
			Model:   mc.Name,
			APIKey:  mc.APIKey,
			BaseURL: mc.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating eino provider: %w", err)
		}
		return p, nil
	default:
		if !hasKey && mc.BaseURL == "" {
			return nil, errNoModel
		}
		p, err := openaicompat.New(openaicompat.Config{
			BaseURL: mc.BaseURL,
			APIKey:  mc.APIKey,
			Timeout: mc.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai provider: %w", err)
		}
		return p, nil
	}
}
