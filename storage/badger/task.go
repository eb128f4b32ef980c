package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
type TaskRepository struct {
	backend *Backend
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) *TaskRepository {
	return &TaskRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *TaskRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TaskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddTask stores a new ingestion task.
func (r *TaskRepository) AddTask(ctx context.Context, task *core.IngestionTask) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		task.UpdatedAt = now
		return tx.Set(makeTaskKey(task.Id), storage.MarshalTask(task))
	})
}

// UpdateTask updates an existing task.
func (r *TaskRepository) UpdateTask(ctx context.Context, task *core.IngestionTask) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeTaskKey(task.Id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		task.UpdatedAt = time.Now().UTC()
		return tx.Set(key, storage.MarshalTask(task))
	})
}

// GetTask retrieves a task by its ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (*core.IngestionTask, error) {
	var result *core.IngestionTask
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makeTaskKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalTask(val)
			return unmarshalErr
		})
	})
	return result, err
}

// ListTasksByState retrieves all tasks in the given state, ordered by
// creation time.
func (r *TaskRepository) ListTasksByState(ctx context.Context, state core.TaskState) ([]*core.IngestionTask, error) {
	var tasks []*core.IngestionTask
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(taskPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var task *core.IngestionTask
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				task, err = storage.UnmarshalTask(val)
				return err
			}); err != nil {
				return err
			}
			if task.State == state {
				tasks = append(tasks, task)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tasks, func(a, b *core.IngestionTask) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return tasks, nil
}
