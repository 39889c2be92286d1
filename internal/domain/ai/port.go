package ai

import "context"

// Client interface to the text-completion backend
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
