package provider

import "context"

// Provider is a tool-calling chat model.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "eino").
	Name() string

	// Complete performs one non-streaming inference round.
	Complete(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
