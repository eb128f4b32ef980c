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

// Package lorekeep is a personal knowledge base with semantic search,
// an embedding lifecycle, and a quality-gated ingestion pipeline.
package lorekeep

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/lorekeep/ai"
	"github.com/poiesic/lorekeep/ai/openai"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/index"
	"github.com/poiesic/lorekeep/ingest"
	"github.com/poiesic/lorekeep/reembed"
	"github.com/poiesic/lorekeep/review"
	"github.com/poiesic/lorekeep/search"
	"github.com/poiesic/lorekeep/storage"
	"github.com/poiesic/lorekeep/storage/badger"
)

// Database wires storage, the embedding providers, the vector index,
// the ingestion machine, the review queue, and search into one handle.
type Database struct {
	repos    *badger.Repositories
	provider ai.Provider
	embedder *ai.FailoverEmbedder
	index    *index.Index
	machine  *ingest.Machine
	queue    *review.Queue
	searcher *search.Searcher
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	inMemory   bool
	threshold  float64
	logger     *slog.Logger
	searchOpts []search.Option
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// configuration. Used for testing and for custom provider stacks.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend without touching disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithAutoApproveThreshold sets the confidence threshold above which
// ingested notes finalize without review. Default 0.75.
func WithAutoApproveThreshold(threshold float64) DatabaseOption {
	return func(o *databaseOptions) {
		o.threshold = threshold
	}
}

// WithSearchWeights sets the ranking signal weights used by search.
func WithSearchWeights(weights search.Weights) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchOpts = append(o.searchOpts, search.WithWeights(weights))
	}
}

// WithSearchDecay sets the recency decay curve used by search: the
// half-life of the penalty and its maximum value.
func WithSearchDecay(halfLife time.Duration, maxPenalty float64) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchOpts = append(o.searchOpts, search.WithDecay(halfLife, maxPenalty))
	}
}

// WithDatabaseLogger sets a custom logger. Default is slog.Default().
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens a knowledge base at filePath. The vector index is
// rebuilt from the stored embedding records before the database is
// returned; the index is a projection, storage is the source of truth.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:  ai.DefaultConfig(),
		threshold: 0.75,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repos, err := badger.OpenRepositories(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	embedder, err := ai.NewFailoverEmbedder(provider.Embedder(),
		ai.WithFallback(ai.NewFallbackEmbedder()),
		ai.WithAdapterLogger(options.logger))
	if err != nil {
		provider.Close()
		repos.Close()
		return nil, err
	}

	ix := index.New(embedder.PrimaryModelVersion())
	if err := ix.Rebuild(context.Background(), repos.Embeddings); err != nil {
		provider.Close()
		repos.Close()
		return nil, err
	}

	machine, err := ingest.NewMachine(
		repos.Notes, repos.Embeddings, repos.Tasks, repos.Reviews, repos.Audit,
		embedder, provider.Extractor(),
		ingest.WithIndexer(ix),
		ingest.WithThreshold(options.threshold),
		ingest.WithLogger(options.logger),
	)
	if err != nil {
		provider.Close()
		repos.Close()
		return nil, err
	}

	queue, err := review.NewQueue(
		repos.Notes, repos.Tasks, repos.Reviews, repos.Audit,
		review.WithIndexer(ix),
		review.WithLogger(options.logger),
	)
	if err != nil {
		machine.Release()
		provider.Close()
		repos.Close()
		return nil, err
	}

	searchOpts := append([]search.Option{search.WithLogger(options.logger)}, options.searchOpts...)
	searcher, err := search.NewSearcher(repos.Notes, ix, embedder, searchOpts...)
	if err != nil {
		machine.Release()
		provider.Close()
		repos.Close()
		return nil, err
	}

	return &Database{
		repos:    repos,
		provider: provider,
		embedder: embedder,
		index:    ix,
		machine:  machine,
		queue:    queue,
		searcher: searcher,
		logger:   options.logger,
	}, nil
}

// Close releases the worker pool, the AI provider, and storage.
func (db *Database) Close() error {
	db.machine.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

// Submit queues a source document for ingestion and returns its task ID.
func (db *Database) Submit(ctx context.Context, source string, opts *ingest.SubmitOptions) (string, error) {
	return db.machine.Submit(ctx, source, opts)
}

// TaskStatus retrieves the current state of an ingestion task.
func (db *Database) TaskStatus(ctx context.Context, taskID string) (*core.IngestionTask, error) {
	return db.machine.GetTaskStatus(ctx, taskID)
}

// CancelTask aborts an ingestion task that has not begun writing records.
func (db *Database) CancelTask(ctx context.Context, taskID string) error {
	return db.machine.Cancel(ctx, taskID)
}

// RetryTask re-runs a failed ingestion task.
func (db *Database) RetryTask(ctx context.Context, taskID string) error {
	return db.machine.Retry(ctx, taskID)
}

// GetNote retrieves a note by ID regardless of its status. Withdrawn
// notes stay retrievable here even though search never returns them.
func (db *Database) GetNote(ctx context.Context, id core.ID) (*core.Note, error) {
	return db.repos.Notes.GetNote(ctx, id)
}

// EditNote replaces a note's content, bumping its version and
// re-embedding it.
func (db *Database) EditNote(ctx context.Context, id core.ID, contents, actor, justification string) error {
	return db.machine.EditNote(ctx, id, contents, actor, justification)
}

// Search executes a ranked query over the corpus.
func (db *Database) Search(ctx context.Context, query *search.Query) ([]*core.SearchResult, error) {
	return db.searcher.Search(ctx, query)
}

// ReviewQueue returns the review queue handle.
func (db *Database) ReviewQueue() *review.Queue {
	return db.queue
}

// AuditTrail returns every audit record touching a note, in order.
func (db *Database) AuditTrail(ctx context.Context, noteID core.ID) ([]*core.AuditRecord, error) {
	return db.repos.Audit.ListByNote(ctx, noteID)
}

// AuditSince returns audit records from the given sequence number on.
func (db *Database) AuditSince(ctx context.Context, seq uint64, limit int) ([]*core.AuditRecord, error) {
	return db.repos.Audit.ListSince(ctx, seq, limit)
}

// Reembed migrates stored embeddings to the primary model version,
// reporting progress to the writer.
func (db *Database) Reembed(ctx context.Context, config *reembed.Config, progress io.Writer) error {
	r, err := reembed.NewReembedder(
		db.repos.Notes, db.repos.Embeddings, db.machine,
		db.embedder.PrimaryModelVersion(), config, progress)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

// RebuildIndex reconstructs the vector index from the embedding store.
func (db *Database) RebuildIndex(ctx context.Context) error {
	return db.index.Rebuild(ctx, db.repos.Embeddings)
}

// NoteRepository exposes the underlying note repository.
func (db *Database) NoteRepository() storage.NoteRepository {
	return db.repos.Notes
}

// LinkRepository exposes the underlying link repository.
func (db *Database) LinkRepository() storage.LinkRepository {
	return db.repos.Links
}

// AuditRepository exposes the underlying audit ledger.
func (db *Database) AuditRepository() storage.AuditRepository {
	return db.repos.Audit
}
