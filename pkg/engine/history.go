package engine

import (
	"log/slog"
	"strings"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/provider"
)

// conversation is the message sequence of one turn. It only grows.
type conversation struct {
	messages []provider.ProviderMessage
}

// newConversation seeds a conversation from the optional system prompt,
// the prior exchanges and the new user message. Exchanges with neither a
// user nor an assistant text are skipped.
func newConversation(systemPrompt string, history []api.Exchange, message string, logger *slog.Logger) *conversation {
	c := &conversation{messages: make([]provider.ProviderMessage, 0, 2*len(history)+2)}

	if strings.TrimSpace(systemPrompt) != "" {
		c.append(provider.ProviderMessage{Role: provider.RoleSystem, Content: systemPrompt})
	}

	for i, ex := range history {
		if ex.User == "" && ex.Assistant == "" {
			logger.Warn("skipping malformed history entry", "index", i)
			continue
		}
		if ex.User != "" {
			c.append(provider.ProviderMessage{Role: provider.RoleUser, Content: ex.User})
		}
		if ex.Assistant != "" {
			c.append(provider.ProviderMessage{Role: provider.RoleAssistant, Content: ex.Assistant})
		}
	}

	c.append(provider.ProviderMessage{Role: provider.RoleUser, Content: message})
	return c
}

func (c *conversation) append(msgs ...provider.ProviderMessage) {
	c.messages = append(c.messages, msgs...)
}

