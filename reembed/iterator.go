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

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

const (
	// DefaultBatchSize is the default number of notes to process in each batch
	DefaultBatchSize = 100
)

// NoteIterator walks the note corpus in ID order, delivering notes in
// batches.
type NoteIterator struct {
	repo      storage.NoteRepository
	batchSize int
}

// NewNoteIterator creates a new note iterator.
// batchSize: number of notes per batch (must be > 0)
func NewNoteIterator(repo storage.NoteRepository, batchSize int) *NoteIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &NoteIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all notes, calling fn for each batch.
// Iteration stops on the first error from fn. Context cancellation is
// checked between batches.
func (it *NoteIterator) ForEach(ctx context.Context, fn func([]*core.Note) error) error {
	batch := make([]*core.Note, 0, it.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = batch[:0]

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	err := it.repo.ForEachNote(ctx, func(note *core.Note) (bool, error) {
		batch = append(batch, note)
		if len(batch) < it.batchSize {
			return true, nil
		}
		if err := flush(); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	return flush()
}
