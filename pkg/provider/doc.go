// Package provider defines the language model capability used by the
// conversation loop. Adapters (openaicompat, eino) translate the
// provider-neutral ProviderRequest and ProviderResponse types to their
// backend protocol internally.
package provider
