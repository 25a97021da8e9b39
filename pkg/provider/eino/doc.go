// Package eino adapts a cloudwego/eino tool-calling chat model to the
// provider.Provider interface. New builds the OpenAI model from eino-ext;
// Wrap accepts any model.ToolCallingChatModel.
package eino
