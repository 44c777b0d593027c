package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"snaplist/internal/llm"
	"snaplist/internal/vision"
)

var systemInstruction = strings.TrimSpace(dedent.Dedent(`
	You are an assistant that writes secondhand marketplace listings. Respond
	with a JSON object containing exactly these fields: title, description,
	category, estimatedPrice. Respond ONLY with the JSON object, no markdown
	or other text.
`))

// MalformedResponseError indicates the generation service reply could not be
// parsed as JSON after fence stripping.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse generation response JSON: %v (response: %s)", e.Err, e.Raw)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IncompleteResponseError indicates the reply parsed but is missing required
// fields.
type IncompleteResponseError struct {
	Missing []string
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("generation response missing required fields: %s", strings.Join(e.Missing, ", "))
}

type llmReply struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	EstimatedPrice string `json:"estimatedPrice"`
}

// LLMGenerator produces a listing draft via the generation service. Every
// failure it can return is recoverable: the pipeline falls back to the
// deterministic generator.
type LLMGenerator struct {
	generator llm.TextGenerator
}

func NewLLMGenerator(generator llm.TextGenerator) *LLMGenerator {
	return &LLMGenerator{generator: generator}
}

// Generate builds the prompt, calls the generation service and validates the
// reply into a complete draft.
func (g *LLMGenerator) Generate(ctx context.Context, analysis *vision.Analysis, userHint string) (*Draft, error) {
	prompt := BuildPrompt(analysis, userHint)

	text, err := g.generator.GenerateText(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation service call failed: %w", err)
	}

	reply, err := parseReply(text)
	if err != nil {
		return nil, err
	}

	if missing := missingFields(reply); len(missing) > 0 {
		return nil, &IncompleteResponseError{Missing: missing}
	}

	// The prompt constrains the category to the closed set, but the model
	// occasionally invents one anyway. An invalid category discards the
	// draft the same way a missing field does.
	if !ValidCategory(reply.Category) {
		log.Warn().Str("category", reply.Category).Msg("generation returned category outside allowed set")
		return nil, &IncompleteResponseError{Missing: []string{"category"}}
	}

	return &Draft{
		Title:       reply.Title,
		Description: reply.Description,
		Category:    reply.Category,
		Price:       reply.EstimatedPrice,
		DetectedItems: lo.Map(lo.Slice(analysis.Labels, 0, 5), func(l vision.Label, _ int) string {
			return l.Description
		}),
	}, nil
}

// parseReply strips markdown code fences from the raw reply and parses it.
// The service sometimes wraps JSON in fences despite instructions.
func parseReply(text string) (*llmReply, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply llmReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}
	return &reply, nil
}

func missingFields(reply *llmReply) []string {
	var missing []string
	if strings.TrimSpace(reply.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(reply.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(reply.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(reply.EstimatedPrice) == "" {
		missing = append(missing, "estimatedPrice")
	}
	return missing
}
