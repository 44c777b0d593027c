package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"snaplist/internal/config"
	"snaplist/internal/listing"
	"snaplist/internal/llm"
	"snaplist/internal/vision"
)

// Developer tool: runs the full listing pipeline on a local image file and
// prints the result as JSON.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: analyze-image <image-file> [item description]")
		os.Exit(1)
	}

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.VisionAPIKey == "" {
		log.Fatal().Msg("VISION_API_KEY is not set")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read image file")
	}

	var itemDescription string
	if len(os.Args) > 2 {
		itemDescription = os.Args[2]
	}

	ctx := context.Background()

	var llmGen *listing.LLMGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini generator")
		}
		llmGen = listing.NewLLMGenerator(gemini)
	}

	pipeline := listing.NewPipeline(
		vision.NewClient(vision.ClientOpts{BaseURL: cfg.VisionBaseURL, APIKey: cfg.VisionAPIKey}),
		llmGen,
		listing.NewDeterministicGenerator(listing.NewPriceEstimator(nil)),
	)

	result, err := pipeline.Run(ctx, base64.StdEncoding.EncodeToString(data), itemDescription)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal result")
	}
	fmt.Println(string(out))
}
