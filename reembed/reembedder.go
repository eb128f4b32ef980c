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

package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/ingest"
	"github.com/poiesic/lorekeep/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of notes to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of notes)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts per note
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// NoteReembedder recomputes one note's embedding under the active model
// version. Satisfied by ingest.Machine, which serializes per-note writes
// and appends the audit entry.
type NoteReembedder interface {
	ReembedNote(ctx context.Context, noteID core.ID) error
}

// Reembedder migrates the corpus to the embedder's current model
// version. Notes whose current embedding already matches are skipped,
// so an interrupted run picks up where it left off.
type Reembedder struct {
	notes        storage.NoteRepository
	embeddings   storage.EmbeddingRepository
	target       NoteReembedder
	modelVersion string
	config       *Config
	progress     io.Writer
	iterator     *NoteIterator
}

// NewReembedder creates a new reembedder.
// modelVersion: the model version to migrate the corpus to
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	notes storage.NoteRepository,
	embeddings storage.EmbeddingRepository,
	target NoteReembedder,
	modelVersion string,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	if notes == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if target == nil {
		return nil, ErrReembedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		notes:        notes,
		embeddings:   embeddings,
		target:       target,
		modelVersion: modelVersion,
		config:       config,
		progress:     progress,
		iterator:     NewNoteIterator(notes, config.BatchSize),
	}, nil
}

// Run executes the migration. Every searchable note missing a current
// embedding under the target model version is re-embedded; progress is
// reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	stale, err := r.collectStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan corpus: %w", err)
	}

	total := len(stale)
	if total == 0 {
		fmt.Fprintf(r.progress, "All embeddings current for model %s (0 notes to migrate)\n", r.modelVersion)
		return nil
	}

	fmt.Fprintf(r.progress, "Migrating %d notes to model %s (batch size: %d)\n",
		total, r.modelVersion, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	for i, id := range stale {
		err := ingest.RetryWithBackoff(ctx, func() error {
			return r.target.ReembedNote(ctx, id)
		}, r.config.MaxRetries, r.config.RetryDelay, nil)
		if err != nil {
			return fmt.Errorf("failed to reembed note %d: %w", id, err)
		}
		tracker.Update(i + 1)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Migration complete. Processed %d notes in %v (%.1f notes/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// collectStale gathers the IDs of searchable notes whose current
// embedding under the target model is missing or built from an older
// note version.
func (r *Reembedder) collectStale(ctx context.Context) ([]core.ID, error) {
	var stale []core.ID

	err := r.iterator.ForEach(ctx, func(batch []*core.Note) error {
		for _, note := range batch {
			if !note.Searchable(true) {
				continue
			}
			current, err := r.embeddings.GetCurrentEmbedding(ctx, note.Id, r.modelVersion)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				stale = append(stale, note.Id)
			case err != nil:
				return err
			case current.NoteVersion != note.Version.Version:
				stale = append(stale, note.Id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}
