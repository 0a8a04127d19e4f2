package llm

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior turn of the conversation, oldest first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	// Complete runs a single completion: one system instruction followed by
	// the conversation turns. Returns the reply text.
	Complete(ctx context.Context, system string, turns []Message) (string, error)
	Close() error
}
