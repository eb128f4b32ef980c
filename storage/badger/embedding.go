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

package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
//
// Records are keyed by (note, model version, note version). The Current
// flag marks the single record per (note, model version) that serves
// search; superseded records stay on disk for audit and rollback.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutEmbedding stores an embedding record and marks it current, demoting
// any previously current record for the same note and model version.
// The demotion and the write happen in one transaction; a reader never
// sees zero or two current records for the pair.
func (r *EmbeddingRepository) PutEmbedding(ctx context.Context, record *core.EmbeddingRecord) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		record.Current = true

		// Demote the previously current record for this pair.
		prefix := makePartialEmbeddingKey(record.NoteId)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		type demotion struct {
			key    []byte
			record *core.EmbeddingRecord
		}
		var demotions []demotion

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var existing *core.EmbeddingRecord
			if err := item.Value(func(val []byte) error {
				var err error
				existing, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			}); err != nil {
				return err
			}
			if existing.Current && existing.ModelVersion == record.ModelVersion {
				existing.Current = false
				demotions = append(demotions, demotion{key: item.KeyCopy(nil), record: existing})
			}
		}

		for _, d := range demotions {
			if err := tx.Set(d.key, storage.MarshalEmbeddingRecord(d.record)); err != nil {
				return err
			}
		}

		key := makeEmbeddingKey(record.NoteId, record.ModelVersion, record.NoteVersion)
		return tx.Set(key, storage.MarshalEmbeddingRecord(record))
	})
}

// GetCurrentEmbedding retrieves the current embedding for a note under
// the given model version.
func (r *EmbeddingRepository) GetCurrentEmbedding(ctx context.Context, noteID core.ID, modelVersion string) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := makePartialEmbeddingKey(noteID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			}); err != nil {
				return err
			}
			if record.Current && record.ModelVersion == modelVersion {
				result = record
				return nil
			}
		}
		return storage.ErrNotFound
	})
	return result, err
}

// GetEmbeddings retrieves all embedding records of a note.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, noteID core.ID) ([]*core.EmbeddingRecord, error) {
	var records []*core.EmbeddingRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := makePartialEmbeddingKey(noteID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// DeleteEmbeddings removes all embedding records of a note.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, noteID core.ID) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		prefix := makePartialEmbeddingKey(noteID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// ForEachCurrent iterates over every current embedding record.
func (r *EmbeddingRepository) ForEachCurrent(ctx context.Context, fn func(record *core.EmbeddingRecord) (bool, error)) error {
	return r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			}); err != nil {
				return err
			}
			if !record.Current {
				continue
			}

			keep, err := fn(record)
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
		}
		return nil
	})
}
