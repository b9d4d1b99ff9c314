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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/ai/openai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/ingestion"
	"github.com/poiesic/recallit/reembed"
	"github.com/poiesic/recallit/search"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/poiesic/recallit/storage/pgvector"
	"github.com/poiesic/recallit/transcript"
)

func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB index directory",
			EnvVars: []string{"RECALLIT_DB"},
			Value:   "./recallit_db",
		},
		&cli.StringFlag{
			Name:    "postgres-dsn",
			Usage:   "PostgreSQL DSN; when set, pgvector is used instead of BadgerDB",
			EnvVars: []string{"RECALLIT_POSTGRES_DSN"},
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"RECALLIT_EMBEDDING_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"RECALLIT_EMBEDDING_MODEL"},
			Value:   "embeddinggemma",
		},
		&cli.IntFlag{
			Name:    "embedding-dimensions",
			Usage:   "Embedding vector dimensionality",
			EnvVars: []string{"RECALLIT_EMBEDDING_DIMENSIONS"},
			Value:   768,
		},
	}
}

func classifierFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "classifier-host",
			Usage:   "Classifier service host URL",
			EnvVars: []string{"RECALLIT_CLASSIFIER_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "classifier-model",
			Usage:   "Classifier model name",
			EnvVars: []string{"RECALLIT_CLASSIFIER_MODEL"},
			Value:   "qwen2.5:3b",
		},
	}
}

func generatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "generator-host",
			Usage:   "Answer generation service host URL",
			EnvVars: []string{"RECALLIT_GENERATOR_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "generator-model",
			Usage:   "Answer generation model name",
			EnvVars: []string{"RECALLIT_GENERATOR_MODEL"},
			Value:   "qwen2.5:3b",
		},
	}
}

func main() {
	app := &cli.App{
		Name:  "recallit",
		Usage: "Chat transcript retrieval with cited answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Parse chat export files and write retrieval units into the index",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: concat(indexFlags(), embeddingFlags(), classifierFlags(),
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum work probability for a transcript to be indexed as work",
						Value: ingestion.DefaultThreshold,
					},
					&cli.StringFlag{
						Name:  "fallback-label",
						Usage: "Label to assume when classification is unavailable (work, personal); fail when unset",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Embedding worker pool size (0 = half the CPUs)",
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Answer a question from the index with source citations",
				ArgsUsage: "QUESTION",
				Action:    queryCommand,
				Flags: concat(indexFlags(), embeddingFlags(), generatorFlags(),
					&cli.StringFlag{
						Name:  "account",
						Usage: "Restrict retrieval to one chat account",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of units to retrieve",
						Value: search.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:  "no-snippet-fallback",
						Usage: "Fail instead of returning raw snippets when generation is unavailable",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show index statistics",
				Action: statsCommand,
				Flags: concat(indexFlags(), embeddingFlags(),
					&cli.StringFlag{
						Name:  "account",
						Usage: "Count units for one chat account only",
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Delete every retrieval unit of a chat",
				ArgsUsage: "CHAT_ID",
				Action:    deleteCommand,
				Flags:     concat(indexFlags(), embeddingFlags()),
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed all retrieval units with a new embedding model",
				Action: reembedCommand,
				Flags: concat(indexFlags(), embeddingFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of units to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N units",
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
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func concat(groups ...any) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		switch v := g.(type) {
		case []cli.Flag:
			flags = append(flags, v...)
		case cli.Flag:
			flags = append(flags, v)
		}
	}
	return flags
}

// openIndex chooses the storage backend from flags. The pgvector DSN wins
// when both are set.
func openIndex(c *cli.Context) (storage.VectorIndex, error) {
	if dsn := c.String("postgres-dsn"); dsn != "" {
		return pgvector.NewIndex(dsn, c.Int("embedding-dimensions"))
	}
	return badger.NewIndex(c.String("db"))
}

func aiConfig(c *cli.Context) (*ai.Config, error) {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEmbeddingDimensions(c.Int("embedding-dimensions")),
	)
	if host := c.String("classifier-host"); host != "" {
		cfg.ClassifierHost = host
	}
	if model := c.String("classifier-model"); model != "" {
		cfg.ClassifierModel = model
	}
	if host := c.String("generator-host"); host != "" {
		cfg.GeneratorHost = host
	}
	if model := c.String("generator-model"); model != "" {
		cfg.GeneratorModel = model
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func modelInfo(c *cli.Context) storage.ModelInfo {
	return storage.ModelInfo{
		Model:      c.String("embedding-model"),
		Dimensions: c.Int("embedding-dimensions"),
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one chat export file is required")
	}

	index, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	provider, err := openai.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	opts := []ingestion.Option{
		ingestion.WithModelInfo(modelInfo(c)),
		ingestion.WithThreshold(c.Float64("threshold")),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}
	if label := c.String("fallback-label"); label != "" {
		parsed, err := parseLabel(label)
		if err != nil {
			return err
		}
		opts = append(opts, ingestion.WithFallbackLabel(parsed))
	}

	pipeline, err := ingestion.NewPipeline(index, provider, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	failed := 0
	for _, path := range c.Args().Slice() {
		if err := ingestFile(ctx, pipeline, path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, c.NArg())
	}
	return nil
}

func ingestFile(ctx context.Context, pipeline *ingestion.Pipeline, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	transcripts, err := transcript.Parse(f)
	if err != nil {
		return err
	}

	for _, t := range transcripts {
		report, err := pipeline.IngestTranscript(ctx, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: %s (%.2f), %d/%d units written\n",
			report.ChatID, report.Label, report.Confidence,
			report.UnitsWritten, report.UnitsTotal)
		for _, failure := range report.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", failure.ChunkID, failure.Err)
		}
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}

	index, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	provider, err := openai.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	engine, err := search.NewEngine(index, provider,
		search.WithTopK(c.Int("top-k")),
		search.WithSnippetFallback(!c.Bool("no-snippet-fallback")),
		search.WithExpectedModel(modelInfo(c)),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	response, err := engine.Query(context.Background(), search.Request{
		Text:        strings.Join(c.Args().Slice(), " "),
		ChatAccount: c.String("account"),
	})
	if err != nil {
		return err
	}

	fmt.Println(response.Answer)
	if len(response.Citations) > 0 {
		fmt.Println()
		for _, citation := range response.Citations {
			fmt.Printf("%s %s / %s (%s)\n",
				citation.SourceID, citation.Title, citation.TurnID, citation.Timestamp)
		}
	}
	if response.Degraded {
		fmt.Fprintln(os.Stderr, "note: degraded response")
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	index, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	ctx := context.Background()
	count, err := index.Count(ctx, storage.Filter{ChatAccount: c.String("account")})
	if err != nil {
		return err
	}
	fmt.Printf("units: %d\n", count)

	info, err := index.ModelInfo(ctx)
	if err == nil {
		fmt.Printf("embedding model: %s (%d dimensions)\n", info.Model, info.Dimensions)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	chatID := c.Args().First()
	if chatID == "" {
		return fmt.Errorf("a chat id is required")
	}

	index, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	deleted, err := index.DeleteChat(context.Background(), chatID)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d units\n", deleted)
	return nil
}

func reembedCommand(c *cli.Context) error {
	index, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	reembedder, err := reembed.NewReembedder(index, embedder, reembedConfig, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(context.Background(), modelInfo(c)); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func parseLabel(s string) (core.AccessibilityLabel, error) {
	switch strings.ToLower(s) {
	case "work":
		return core.LabelWork, nil
	case "personal":
		return core.LabelPersonal, nil
	default:
		return "", fmt.Errorf("invalid label %q: must be work or personal", s)
	}
}

func setup(c *cli.Context) error {
	// Missing .env is fine; the flags carry defaults.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
