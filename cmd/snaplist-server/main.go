package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"snaplist/internal/config"
	"snaplist/internal/httpapi"
	"snaplist/internal/listing"
	"snaplist/internal/llm"
	"snaplist/internal/storage"
	"snaplist/internal/vision"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store storage.Store
	if cfg.DBPath != "" {
		sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize store")
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Info().Str("dbPath", cfg.DBPath).Msg("listing history and vision cache enabled")
	}

	// Vision analysis is mandatory; without a credential the pipeline
	// rejects every request with a configuration error.
	var analyzer vision.Analyzer
	if cfg.VisionAPIKey != "" {
		analyzer = vision.NewClient(vision.ClientOpts{
			BaseURL: cfg.VisionBaseURL,
			APIKey:  cfg.VisionAPIKey,
		})
		if store != nil {
			analyzer = vision.NewCachedAnalyzer(analyzer, store)
		}
	} else {
		log.Warn().Msg("VISION_API_KEY is not set, listing requests will fail")
	}

	// The generation credential is optional; without it every listing comes
	// from the deterministic generator.
	var llmGen *listing.LLMGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini generator")
		}
		llmGen = listing.NewLLMGenerator(gemini)
		log.Info().Msg("llm listing generation enabled")
	} else {
		log.Info().Msg("GEMINI_API_KEY is not set, using deterministic generation only")
	}

	pipeline := listing.NewPipeline(
		analyzer,
		llmGen,
		listing.NewDeterministicGenerator(listing.NewPriceEstimator(nil)),
	)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.NewServer(pipeline, store).Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
