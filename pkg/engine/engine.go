package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/provider"
	"github.com/rhuss/credentialwatch/pkg/tools"
)

// ErrLoopExceeded is returned when a turn reaches the model round cap
// while the model is still requesting tools.
var ErrLoopExceeded = errors.New("conversation loop exceeded")

// ToolClient is the subset of the tool client the engine needs.
type ToolClient interface {
	CallTool(ctx context.Context, endpoint, operation string, args map[string]any) (any, error)
	Tools() []tools.Descriptor
	EndpointFor(name string) (string, error)
}

// Engine answers conversation turns.
type Engine struct {
	provider provider.Provider
	tools    ToolClient
	cfg      Config
	logger   *slog.Logger
}

// New creates a new Engine. The provider and tool client must not be nil.
// A nil logger means slog.Default().
func New(p provider.Provider, tc ToolClient, cfg Config, logger *slog.Logger) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}
	if tc == nil {
		return nil, fmt.Errorf("engine: tool client must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{provider: p, tools: tc, cfg: cfg, logger: logger}, nil
}

// Turn answers message given the prior exchanges of the conversation and
// returns the assistant's reply.
//
// A tool that fails aborts the turn with its *tools.InvocationError. A turn
// that does not converge within the round cap fails with ErrLoopExceeded.
func (e *Engine) Turn(ctx context.Context, message string, history []api.Exchange) (string, error) {
	conv := newConversation(e.cfg.SystemPrompt, history, message, e.logger)
	return e.run(ctx, conv)
}
