// Package openaicompat is a Provider for any OpenAI-compatible Chat
// Completions backend (OpenAI, vLLM, LiteLLM, Ollama). It handles request
// serialization, response parsing and error mapping over net/http.
package openaicompat
