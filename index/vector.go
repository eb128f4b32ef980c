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

// Package index provides the in-memory cosine similarity index over
// current note embeddings. One index holds vectors of exactly one
// embedding model version; mixing versions is rejected because their
// vector spaces are not comparable.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

var (
	// ErrDimensionMismatch indicates a vector whose width differs from
	// the vectors already in the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrModelMismatch indicates a vector produced by a different
	// embedding model version than the index holds.
	ErrModelMismatch = errors.New("embedding model version mismatch")

	// ErrInvalidVector indicates an empty or zero-magnitude vector.
	ErrInvalidVector = errors.New("invalid vector")
)

// Index is an exhaustive in-memory cosine index.
//
// Vectors are normalized on insert, so query distance reduces to
// 1 - dot(query, stored). The index is safe for concurrent use; queries
// take a read lock and never block each other.
type Index struct {
	mu           sync.RWMutex
	modelVersion string
	dimensions   int
	vectors      map[core.ID][]float32
}

// New creates an empty index bound to the given model version.
// The dimension is fixed by the first vector inserted.
func New(modelVersion string) *Index {
	return &Index{
		modelVersion: modelVersion,
		vectors:      make(map[core.ID][]float32),
	}
}

// ModelVersion returns the model version this index is bound to.
func (ix *Index) ModelVersion() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.modelVersion
}

// Dimensions returns the vector width, or 0 while the index is empty.
func (ix *Index) Dimensions() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimensions
}

// Len returns the number of indexed notes.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Upsert inserts or replaces the vector of a note.
// The vector must come from the index's model version and match the
// established dimension.
func (ix *Index) Upsert(noteID core.ID, vector []float32, modelVersion string) error {
	normalized, err := normalize(vector)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if modelVersion != ix.modelVersion {
		return fmt.Errorf("%w: index holds %q, vector is %q", ErrModelMismatch, ix.modelVersion, modelVersion)
	}
	if ix.dimensions == 0 {
		ix.dimensions = len(vector)
	} else if len(vector) != ix.dimensions {
		return fmt.Errorf("%w: index holds %d, vector has %d", ErrDimensionMismatch, ix.dimensions, len(vector))
	}

	ix.vectors[noteID] = normalized
	return nil
}

// Remove drops a note from the index. Removing an absent note is a no-op.
func (ix *Index) Remove(noteID core.ID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.vectors, noteID)

	if len(ix.vectors) == 0 {
		ix.dimensions = 0
	}
}

// Query returns the k nearest notes to the query vector by cosine
// distance, restricted to notes accepted by predicate (nil admits all).
// Results are ordered by ascending distance; equal distances break by
// ascending note ID so rankings are deterministic.
func (ix *Index) Query(vector []float32, k int, predicate func(core.ID) bool) ([]core.SimilarityMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 {
		return nil, nil
	}
	// Shape before content: a wrong-width vector is a dimension error
	// even when it would also fail normalization.
	if len(vector) != ix.dimensions {
		return nil, fmt.Errorf("%w: index holds %d, query has %d", ErrDimensionMismatch, ix.dimensions, len(vector))
	}
	normalized, err := normalize(vector)
	if err != nil {
		return nil, err
	}

	matches := make([]core.SimilarityMatch, 0, len(ix.vectors))
	for noteID, stored := range ix.vectors {
		if predicate != nil && !predicate(noteID) {
			continue
		}
		matches = append(matches, core.SimilarityMatch{
			NoteId:   noteID,
			Distance: float64(1 - dot(normalized, stored)),
		})
	}

	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Distance != b.Distance {
			if a.Distance < b.Distance {
				return -1
			}
			return 1
		}
		if a.NoteId < b.NoteId {
			return -1
		}
		if a.NoteId > b.NoteId {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Rebuild repopulates the index from the current embedding records of
// its model version. The swap is atomic with respect to queries, and
// rebuilding an index that already matches storage is a no-op in effect,
// so Rebuild is safe to run repeatedly.
func (ix *Index) Rebuild(ctx context.Context, repo storage.EmbeddingRepository) error {
	modelVersion := ix.ModelVersion()

	fresh := make(map[core.ID][]float32)
	dimensions := 0
	err := repo.ForEachCurrent(ctx, func(record *core.EmbeddingRecord) (bool, error) {
		if record.ModelVersion != modelVersion {
			return true, nil
		}
		normalized, err := normalize(record.Vector)
		if err != nil {
			return false, fmt.Errorf("note %d: %w", record.NoteId, err)
		}
		if dimensions == 0 {
			dimensions = len(record.Vector)
		} else if len(record.Vector) != dimensions {
			return false, fmt.Errorf("note %d: %w", record.NoteId, ErrDimensionMismatch)
		}
		fresh[record.NoteId] = normalized
		return true, nil
	})
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = fresh
	ix.dimensions = dimensions
	return nil
}

// normalize returns a unit-length copy of the vector.
func normalize(vector []float32) ([]float32, error) {
	if len(vector) == 0 {
		return nil, ErrInvalidVector
	}
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return nil, ErrInvalidVector
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = v * norm
	}
	return out, nil
}

// dot computes the dot product of two equal-length vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
