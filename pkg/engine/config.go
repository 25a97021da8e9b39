package engine

// Config holds configuration for the conversation engine.
type Config struct {
	// Model is the model name sent to the provider.
	Model string

	// Temperature is passed to the provider when set.
	Temperature *float64

	// MaxTokens caps the completion length when positive.
	MaxTokens int

	// MaxTurns is the maximum number of model rounds in one conversation
	// turn. Zero or negative means use the default of 10.
	MaxTurns int

	// SystemPrompt, when set, is sent as the first message of every turn.
	SystemPrompt string

	// SequentialTools executes the tool calls of one round one after
	// another instead of concurrently.
	SequentialTools bool
}

// maxTurns returns the effective max turns value, defaulting to 10.
func (c Config) maxTurns() int {
	if c.MaxTurns <= 0 {
		return 10
	}
	return c.MaxTurns
}
