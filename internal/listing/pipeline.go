package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"snaplist/internal/vision"
)

var (
	// ErrMissingImageData is a client fault: the request carried no image.
	ErrMissingImageData = errors.New("no image data provided")
	// ErrMissingVisionCredential is a server configuration fault. Vision
	// analysis is mandatory, so there is no path around it.
	ErrMissingVisionCredential = errors.New("vision service credential is not configured")
)

// Pipeline orchestrates one listing generation: vision analysis, then the
// generation service if configured, then the deterministic fallback. Each
// invocation is independent and stateless; stages run strictly sequentially.
type Pipeline struct {
	vision        vision.Analyzer
	llm           *LLMGenerator
	deterministic *DeterministicGenerator
}

// NewPipeline wires a pipeline. analyzer may be nil when no vision credential
// is configured; llmGen may be nil when no generation credential is
// configured, which selects the deterministic path for every request.
func NewPipeline(analyzer vision.Analyzer, llmGen *LLMGenerator, det *DeterministicGenerator) *Pipeline {
	return &Pipeline{
		vision:        analyzer,
		llm:           llmGen,
		deterministic: det,
	}
}

// Run generates a listing for the given image. itemDescription is an optional
// free-text hint from the seller, carried into the generation prompt
// unchanged.
//
// Errors returned here are terminal: missing input, missing vision
// credential, or a vision service failure. Generation-service failures are
// never returned; they fall back to the deterministic generator.
func (p *Pipeline) Run(ctx context.Context, imageData, itemDescription string) (*Result, error) {
	if imageData == "" {
		return nil, ErrMissingImageData
	}
	if p.vision == nil {
		return nil, ErrMissingVisionCredential
	}

	analysis, err := p.vision.Annotate(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}

	var draft *Draft
	method := MethodDeterministic

	if p.llm != nil {
		draft, err = p.llm.Generate(ctx, analysis, itemDescription)
		if err != nil {
			log.Warn().Err(err).Msg("llm generation failed, falling back to deterministic generator")
			draft = nil
		} else {
			method = MethodLLM
		}
	}

	if draft == nil {
		draft = p.deterministic.Generate(analysis)
	}

	confidence := 0.8
	if len(analysis.Labels) > 0 {
		confidence = analysis.Labels[0].Score
	}

	log.Info().
		Str("method", method).
		Str("category", draft.Category).
		Float64("confidence", confidence).
		Msg("listing generated")

	return &Result{
		Draft:          *draft,
		Confidence:     confidence,
		AnalysisMethod: method,
	}, nil
}
