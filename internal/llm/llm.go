package llm

import "context"

// Usage contains token usage and cost information for a single call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// TextGenerator produces a free-form completion for a prompt under a fixed
// system instruction.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}
