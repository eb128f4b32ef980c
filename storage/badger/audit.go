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

// AuditRepository implements storage.AuditRepository for BadgerDB.
// The ledger is append-only: records are written under a monotonic
// sequence number and never updated or deleted.
type AuditRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(backend *Backend) (*AuditRepository, error) {
	seq, err := backend.GetSequence(auditSeq)
	if err != nil {
		return nil, err
	}
	return &AuditRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the sequence.
func (r *AuditRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *AuditRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Append writes an audit record, assigning its sequence number and
// timestamp.
func (r *AuditRepository) Append(ctx context.Context, record *core.AuditRecord) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		seq, err := r.seq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if seq == 0 {
			seq, err = r.seq.Next()
			if err != nil {
				return err
			}
		}
		record.Seq = seq
		if record.Timestamp.IsZero() {
			record.Timestamp = time.Now().UTC()
		}

		if err := tx.Set(makeAuditKey(seq), storage.MarshalAuditRecord(record)); err != nil {
			return err
		}
		if record.NoteId != 0 {
			indexKey := makeAuditNoteKey(record.NoteId, seq)
			if err := tx.Set(indexKey, storage.MarshalID(core.ID(seq))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByNote retrieves all audit records touching a note, in sequence order.
func (r *AuditRepository) ListByNote(ctx context.Context, noteID core.ID) ([]*core.AuditRecord, error) {
	var records []*core.AuditRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := makePartialAuditNoteKey(noteID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var seq core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				seq, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := readAuditRecord(tx, makeAuditKey(uint64(seq)))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	})
	return records, err
}

// ListSince retrieves audit records with sequence >= seq, up to limit
// records, in sequence order. A limit of 0 means no limit.
func (r *AuditRepository) ListSince(ctx context.Context, seq uint64, limit int) ([]*core.AuditRecord, error) {
	var records []*core.AuditRecord
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeAuditKey(seq)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if limit > 0 && len(records) >= limit {
				return nil
			}
			var record *core.AuditRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalAuditRecord(val)
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

// readAuditRecord reads an audit record from the transaction.
// Returns nil, nil if the key does not exist.
func readAuditRecord(tx *badger.Txn, key []byte) (*core.AuditRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.AuditRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalAuditRecord(val)
		return unmarshalErr
	})
	return record, err
}
