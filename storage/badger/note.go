package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

// NoteRepository implements storage.NoteRepository for BadgerDB.
type NoteRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(backend *Backend) (*NoteRepository, error) {
	idSeq, err := backend.GetSequence(noteIDSeq)
	if err != nil {
		return nil, err
	}

	return &NoteRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *NoteRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *NoteRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddNotes adds one or more notes to storage.
func (r *NoteRepository) AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, note := range notes {
			if note.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				note.Id = core.ID(nextID)
			}

			now := time.Now().UTC()
			if note.Version.Version == 0 {
				note.Version.Version = 1
			}
			if note.Version.CreatedAt.IsZero() {
				note.Version.CreatedAt = now
			}
			if note.Version.ModifiedAt.IsZero() {
				note.Version.ModifiedAt = now
			}

			key := makeNoteKey(note.Id)
			if err := tx.Set(key, storage.MarshalNote(note)); err != nil {
				return err
			}

			if err := r.updateTagIndex(tx, note); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNotes updates existing notes.
func (r *NoteRepository) UpdateNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, note := range notes {
			key := makeNoteKey(note.Id)

			// Read old note to detect tag changes
			old, err := readNote(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			note.Version.ModifiedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalNote(note)); err != nil {
				return err
			}

			if !slices.Equal(old.Tags, note.Tags) {
				if err := r.deleteTagIndex(tx, old); err != nil {
					return err
				}
				if err := r.updateTagIndex(tx, note); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteNotes removes notes by their IDs.
func (r *NoteRepository) DeleteNotes(ctx context.Context, ids ...core.ID) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeNoteKey(id)

			note, err := readNote(tx, key)
			if err != nil {
				return err
			}
			if note == nil {
				return storage.ErrNotFound
			}

			if err := r.deleteTagIndex(tx, note); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetNote retrieves a single note by ID.
func (r *NoteRepository) GetNote(ctx context.Context, id core.ID) (*core.Note, error) {
	var result *core.Note
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readNote(tx, makeNoteKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// GetNotes retrieves multiple notes by their IDs.
func (r *NoteRepository) GetNotes(ctx context.Context, ids ...core.ID) ([]*core.Note, error) {
	var result []*core.Note
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			note, err := readNote(tx, makeNoteKey(id))
			if err != nil {
				return err
			}
			if note != nil {
				result = append(result, note)
			}
		}
		return nil
	})
	return result, err
}

// GetNoteIDsByTag retrieves IDs of notes carrying the given tag.
func (r *NoteRepository) GetNoteIDsByTag(ctx context.Context, tag string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := makePartialNoteTagKey(tag)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

// ForEachNote iterates over every stored note in ID order.
func (r *NoteRepository) ForEachNote(ctx context.Context, fn func(note *core.Note) (bool, error)) error {
	return r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(notePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var note *core.Note
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				note, err = storage.UnmarshalNote(val)
				return err
			}); err != nil {
				return err
			}

			keep, err := fn(note)
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

// CountNotes returns the total number of stored notes.
func (r *NoteRepository) CountNotes(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(notePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Helper methods

// readNote reads a note from the transaction.
// Returns nil, nil if the key does not exist.
func readNote(tx *badger.Txn, key []byte) (*core.Note, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var note *core.Note
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		note, unmarshalErr = storage.UnmarshalNote(val)
		return unmarshalErr
	})
	return note, err
}

// updateTagIndex adds tag index entries for a note.
func (r *NoteRepository) updateTagIndex(tx *badger.Txn, note *core.Note) error {
	for _, tag := range note.Tags {
		key := makeNoteTagKey(tag, note.Id)
		if err := tx.Set(key, storage.MarshalID(note.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteTagIndex removes tag index entries for a note.
func (r *NoteRepository) deleteTagIndex(tx *badger.Txn, note *core.Note) error {
	for _, tag := range note.Tags {
		key := makeNoteTagKey(tag, note.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
