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

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/lorekeep"
	"github.com/poiesic/lorekeep/ai"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/ingest"
	"github.com/poiesic/lorekeep/reembed"
	"github.com/poiesic/lorekeep/review"
	"github.com/poiesic/lorekeep/search"
)

func main() {
	app := &cli.App{
		Name:  "lorekeep",
		Usage: "Personal knowledge base with semantic search and quality-gated ingestion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL for embedding and extraction",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "extractor-model",
				Usage: "Extractor model name",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Submit a source document for ingestion",
				ArgsUsage: "<source>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach to the resulting note (repeatable)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Note type (fleeting, literature, permanent, insight, agent)",
						Value: "literature",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Block until the task reaches a terminal state",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the state of an ingestion task",
				ArgsUsage: "<task-id>",
				Action:    statusCommand,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel an ingestion task that has not started writing records",
				ArgsUsage: "<task-id>",
				Action:    cancelCommand,
			},
			{
				Name:      "retry",
				Usage:     "Re-run a failed ingestion task",
				ArgsUsage: "<task-id>",
				Action:    retryCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max-hits",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Restrict results to notes carrying this tag (repeatable)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict results to this note type",
					},
					&cli.BoolFlag{
						Name:  "include-unreviewed",
						Usage: "Include notes still awaiting review",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print the per-signal score breakdown",
					},
				},
			},
			{
				Name:      "edit",
				Usage:     "Replace a note's content, re-embedding it",
				ArgsUsage: "<note-id> <new-contents>",
				Action:    editCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "actor",
						Usage: "Who is making the edit",
						Value: "human",
					},
					&cli.StringFlag{
						Name:  "justification",
						Usage: "Why the edit is being made",
					},
				},
			},
			{
				Name:  "review",
				Usage: "Work the human review queue",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List pending review items",
						Action: reviewListCommand,
					},
					{
						Name:      "resolve",
						Usage:     "Finalize or reject a review item",
						ArgsUsage: "<item-id>",
						Action:    reviewResolveCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "decision",
								Usage:    "finalize or reject",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "actor",
								Usage: "Who is resolving the item",
								Value: "human",
							},
							&cli.StringFlag{
								Name:  "justification",
								Usage: "Why the decision was made",
							},
						},
					},
				},
			},
			{
				Name:   "audit",
				Usage:  "Show the audit ledger",
				Action: auditCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "note",
						Usage: "Show only records touching this note ID",
					},
					&cli.Uint64Flag{
						Name:  "since",
						Usage: "Start from this sequence number",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records (0 = no limit)",
						Value: 50,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Migrate stored embeddings to the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of notes to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N notes",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts per note",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "rebuild-index",
				Usage:  "Reconstruct the vector index from the embedding store",
				Action: rebuildIndexCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// fileConfig mirrors the YAML configuration file. Command-line flags
// override anything set here.
type fileConfig struct {
	DB                   string         `yaml:"db"`
	Host                 string         `yaml:"host"`
	EmbeddingModel       string         `yaml:"embedding_model"`
	ExtractorModel       string         `yaml:"extractor_model"`
	AutoApproveThreshold float64        `yaml:"auto_approve_threshold"`
	Weights              *weightsConfig `yaml:"weights"`
	DecayHalfLifeDays    float64        `yaml:"decay_half_life_days"`
	DecayMaxPenalty      float64        `yaml:"decay_max_penalty"`
}

// weightsConfig holds the ranking signal weights. When the block is
// present all four weights are used as given.
type weightsConfig struct {
	Semantic float64 `yaml:"semantic"`
	Metadata float64 `yaml:"metadata"`
	Quality  float64 `yaml:"quality"`
	Type     float64 `yaml:"type"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*lorekeep.Database, error) {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.DB
	}
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required (--db flag or db config key)")
	}

	aiOpts := []ai.ConfigOption{}
	if host := firstNonEmpty(c.String("host"), cfg.Host); host != "" {
		aiOpts = append(aiOpts, ai.WithHost(host))
	}
	if model := firstNonEmpty(c.String("embedding-model"), cfg.EmbeddingModel); model != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingModel(model))
	}
	if model := firstNonEmpty(c.String("extractor-model"), cfg.ExtractorModel); model != "" {
		aiOpts = append(aiOpts, ai.WithExtractorModel(model))
	}

	dbOpts := []lorekeep.DatabaseOption{
		lorekeep.WithAIConfig(ai.NewConfig(aiOpts...)),
	}
	if cfg.AutoApproveThreshold > 0 {
		dbOpts = append(dbOpts, lorekeep.WithAutoApproveThreshold(cfg.AutoApproveThreshold))
	}
	if cfg.Weights != nil {
		dbOpts = append(dbOpts, lorekeep.WithSearchWeights(search.Weights{
			Semantic: cfg.Weights.Semantic,
			Metadata: cfg.Weights.Metadata,
			Quality:  cfg.Weights.Quality,
			Type:     cfg.Weights.Type,
		}))
	}
	if cfg.DecayHalfLifeDays > 0 {
		penalty := cfg.DecayMaxPenalty
		if penalty == 0 {
			penalty = 0.1
		}
		halfLife := time.Duration(cfg.DecayHalfLifeDays * 24 * float64(time.Hour))
		dbOpts = append(dbOpts, lorekeep.WithSearchDecay(halfLife, penalty))
	}

	return lorekeep.NewDatabase(dbPath, dbOpts...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseNoteType(name string) (core.NoteType, error) {
	switch strings.ToLower(name) {
	case "fleeting":
		return core.NoteTypeFleeting, nil
	case "literature":
		return core.NoteTypeLiterature, nil
	case "permanent":
		return core.NoteTypePermanent, nil
	case "insight":
		return core.NoteTypeInsight, nil
	case "agent":
		return core.NoteTypeAgent, nil
	default:
		return 0, fmt.Errorf("unknown note type %q", name)
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one source argument")
	}
	source := c.Args().First()

	noteType, err := parseNoteType(c.String("type"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	taskID, err := db.Submit(ctx, source, &ingest.SubmitOptions{
		Tags: c.StringSlice("tag"),
		Type: noteType,
	})
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}
	fmt.Printf("task %s submitted\n", taskID)

	if !c.Bool("wait") {
		return nil
	}
	for {
		task, err := db.TaskStatus(ctx, taskID)
		if err != nil {
			return err
		}
		if task.State.Terminal() {
			printTask(task)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one task-id argument")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	task, err := db.TaskStatus(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	printTask(task)
	return nil
}

func cancelCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one task-id argument")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CancelTask(context.Background(), c.Args().First()); err != nil {
		return err
	}
	fmt.Println("cancellation requested")
	return nil
}

func retryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one task-id argument")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RetryTask(context.Background(), c.Args().First()); err != nil {
		return err
	}
	fmt.Println("retry started")
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	filter := &search.Filter{Tags: c.StringSlice("tag")}
	if typeName := c.String("type"); typeName != "" {
		noteType, err := parseNoteType(typeName)
		if err != nil {
			return err
		}
		filter.Types = []core.NoteType{noteType}
	}

	results, err := db.Search(context.Background(), &search.Query{
		Text:              c.Args().First(),
		MaxHits:           c.Int("max-hits"),
		Filter:            filter,
		IncludeUnreviewed: c.Bool("include-unreviewed"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%d. [note %d] score=%.4f\n", i+1, result.Note.Id, result.Score)
		fmt.Printf("   %s\n", snippet(result.Note.Contents, 120))
		if c.Bool("explain") {
			b := result.Breakdown
			fmt.Printf("   semantic=%.4f metadata=%.4f quality=%.4f type=%.4f decay=-%.4f\n",
				b.Semantic, b.Metadata, b.Quality, b.Type, b.Decay)
		}
	}
	return nil
}

func editCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected note-id and new-contents arguments")
	}
	var noteID uint64
	if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &noteID); err != nil {
		return fmt.Errorf("invalid note ID %q", c.Args().Get(0))
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.EditNote(context.Background(), core.ID(noteID), c.Args().Get(1),
		c.String("actor"), c.String("justification"))
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}
	fmt.Println("note updated and re-embedded")
	return nil
}

func reviewListCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := db.ReviewQueue().List(context.Background())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("review queue is empty")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  note=%d", item.Review.Id, item.Review.NoteId)
		if item.Task != nil {
			fmt.Printf("  confidence=%.2f", item.Task.Confidence)
		}
		fmt.Println()
		if item.Note != nil {
			fmt.Printf("    %s\n", snippet(item.Note.Contents, 120))
		}
	}
	return nil
}

func reviewResolveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one item-id argument")
	}

	var decision review.Decision
	switch strings.ToLower(c.String("decision")) {
	case "finalize":
		decision = review.DecisionFinalize
	case "reject":
		decision = review.DecisionReject
	default:
		return fmt.Errorf("decision must be finalize or reject")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.ReviewQueue().Resolve(context.Background(), c.Args().First(), decision,
		c.String("actor"), c.String("justification"))
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}
	fmt.Printf("item %s: %s\n", c.Args().First(), decision)
	return nil
}

func auditCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	var records []*core.AuditRecord
	if noteID := c.Uint64("note"); noteID != 0 {
		records, err = db.AuditTrail(ctx, core.ID(noteID))
	} else {
		records, err = db.AuditSince(ctx, c.Uint64("since"), c.Int("limit"))
	}
	if err != nil {
		return err
	}

	for _, r := range records {
		fmt.Printf("%6d  %s  %-18s  note=%d v%d  %s",
			r.Seq, r.Timestamp.Format(time.RFC3339), r.Action, r.NoteId, r.NoteVersion, r.Actor)
		if r.Justification != "" {
			fmt.Printf("  %q", r.Justification)
		}
		fmt.Println()
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Reembed(context.Background(), config, os.Stderr); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func rebuildIndexCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RebuildIndex(context.Background()); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	fmt.Println("vector index rebuilt")
	return nil
}

func printTask(task *core.IngestionTask) {
	fmt.Printf("task %s: %s\n", task.Id, task.State)
	if task.Confidence > 0 {
		fmt.Printf("  confidence: %.2f\n", task.Confidence)
	}
	if task.NoteId != 0 {
		fmt.Printf("  note: %d\n", task.NoteId)
	}
	if task.ErrorDetail != "" {
		fmt.Printf("  error: %s\n", task.ErrorDetail)
	}
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func setupLogger(c *cli.Context) error {
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
