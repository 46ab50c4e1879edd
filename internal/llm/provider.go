// Package llm defines the narrow chat-completion contract the classifier's
// fallback pass and the aggregator's summarization step use, plus the
// concrete Anthropic and OpenAI backends and a response cache.
package llm

import "context"

// Message is one turn in a chat-completion request.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// Provider is the LLM collaborator contract: a single bounded chat call.
// Implementations must respect ctx's deadline and return promptly on
// cancellation so the orchestrator's timeout budget holds.
type Provider interface {
	Chat(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error)
}
