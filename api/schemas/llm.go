// api/schemas/llm.go
package schemas

import "context"

// GenerationOptions tune a single model call.
type GenerationOptions struct {
	Temperature     float64
	ForceJSONFormat bool
}

// GenerationRequest carries one chat-style exchange to the model boundary.
// SystemPrompt holds the action schema instruction; UserPrompt holds the user
// command plus the truncated screen context. Raw image bytes never travel on
// this channel.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Options      GenerationOptions
}

// LLMClient is the language-model boundary. Implementations must honor the
// context deadline; the caller treats any error identically to an unusable
// response and falls back to deterministic interpretation.
type LLMClient interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
