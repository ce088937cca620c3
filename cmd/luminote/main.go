// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/luminote"
	"github.com/poiesic/luminote/ai"
	"github.com/poiesic/luminote/ai/openai"
	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/ingest"
	"github.com/poiesic/luminote/reindex"
	"github.com/poiesic/luminote/storage/badger"
	"github.com/poiesic/luminote/transcript"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "luminote",
		Usage: "Personalized video transcript assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Ingest a video transcript into a user's corpus",
				Action: loadCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User identifier owning the corpus",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "video",
						Usage: "YouTube video URL to ingest",
					},
					&cli.StringFlag{
						Name:  "srt",
						Usage: "Path to a local SubRip caption file to ingest instead of a video URL",
					},
					&cli.StringFlag{
						Name:  "captions-host",
						Usage: "Caption service base URL (required with --video)",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Render progress as human-readable lines instead of NDJSON",
					},
				}, aiFlags()...),
			},
			{
				Name:   "ask",
				Usage:  "Answer a question grounded in a user's ingested transcripts",
				Action: askCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User identifier owning the corpus",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Question to answer",
						Required: true,
					},
				}, aiFlags()...),
			},
			{
				Name:   "remember",
				Usage:  "Classify a feedback note and store it as a user preference",
				Action: rememberCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User identifier to store the preference for",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "note",
						Aliases:  []string{"n"},
						Usage:    "Feedback text to classify",
						Required: true,
					},
				}, aiFlags()...),
			},
			{
				Name:   "memories",
				Usage:  "List a user's stored preferences",
				Action: memoriesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User identifier to list preferences for",
						Required: true,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Recompute embeddings for all stored transcript chunks",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags returns the flags shared by every command that talks to the AI
// services. Defaults match ai.DefaultConfig.
func aiFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "generator-host",
			Usage: "Generation service host URL",
			Value: defaults.GeneratorHost,
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Generation model name",
			Value: defaults.GeneratorModel,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: defaults.EmbeddingHost,
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: defaults.EmbeddingModel,
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
}

func loadCommand(c *cli.Context) error {
	ctx := context.Background()

	videoRef := c.String("video")
	srtPath := c.String("srt")
	if videoRef == "" && srtPath == "" {
		return fmt.Errorf("either --video or --srt is required")
	}

	var source transcript.Source
	if srtPath != "" {
		source = transcript.NewSRTSource()
		videoRef = srtPath
	} else {
		captionsHost := c.String("captions-host")
		if captionsHost == "" {
			return fmt.Errorf("captions-host is required when loading from a video URL")
		}
		source = transcript.NewCaptionSource(captionsHost)
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	assistant, err := luminote.NewAssistant(c.String("db"), luminote.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer assistant.Close()

	pipeline, err := assistant.NewIngestionPipeline(source)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	pretty := c.Bool("pretty")
	var failure string
	for event := range pipeline.Run(ctx, videoRef, c.String("user")) {
		if event.Status == ingest.StatusError {
			failure = event.Message
		}
		if pretty {
			renderEvent(os.Stdout, event)
			continue
		}
		if err := event.Encode(os.Stdout); err != nil {
			return err
		}
	}

	if failure != "" {
		return fmt.Errorf("ingestion failed: %s", failure)
	}
	return nil
}

// renderEvent prints one pipeline event in the --pretty format.
func renderEvent(w io.Writer, event ingest.Event) {
	if event.Status == ingest.StatusError {
		fmt.Fprintf(w, "error: %s\n", event.Message)
		return
	}
	fmt.Fprintf(w, "[%d%%] %s\n", event.Progress, event.Message)
	if len(event.Concepts) > 0 {
		fmt.Fprintf(w, "Concepts: %s\n", strings.Join(event.Concepts, ", "))
	}
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	assistant, err := luminote.NewAssistant(c.String("db"), luminote.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer assistant.Close()

	engine, err := assistant.NewQueryEngine()
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	result, err := engine.Answer(ctx, c.String("user"), c.String("query"))
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func rememberCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	assistant, err := luminote.NewAssistant(c.String("db"), luminote.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer assistant.Close()

	store, err := assistant.NewMemoryStore()
	if err != nil {
		return fmt.Errorf("failed to create memory store: %w", err)
	}

	_, message, err := store.Remember(ctx, c.String("user"), c.String("note"))
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func memoriesCommand(c *cli.Context) error {
	ctx := context.Background()

	userID := c.String("user")
	if err := core.ValidateUserId(userID); err != nil {
		return err
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewMemoryRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create memory repository: %w", err)
	}
	defer repo.Close()

	memories, err := repo.GetMemories(ctx, userID)
	if err != nil {
		return err
	}

	if len(memories.Items) == 0 {
		fmt.Println("No stored preferences.")
		return nil
	}
	for _, item := range memories.Items {
		fmt.Printf("- %s\n", item)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := badger.NewCorpusStore(backend, embedder)
	if err != nil {
		return fmt.Errorf("failed to create corpus store: %w", err)
	}
	defer store.Close()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := reindex.NewReindexer(store, store, embedder, reindexConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))

	return reindexer.Run(ctx)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
