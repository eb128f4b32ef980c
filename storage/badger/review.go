package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

// ReviewRepository implements storage.ReviewRepository for BadgerDB.
type ReviewRepository struct {
	backend *Backend
}

var _ storage.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(backend *Backend) *ReviewRepository {
	return &ReviewRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *ReviewRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ReviewRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddReviewItem enqueues an item for review.
func (r *ReviewRepository) AddReviewItem(ctx context.Context, item *core.ReviewItem) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		return tx.Set(makeReviewKey(item.Id), storage.MarshalReviewItem(item))
	})
}

// GetReviewItem retrieves a queue item by its ID.
func (r *ReviewRepository) GetReviewItem(ctx context.Context, id string) (*core.ReviewItem, error) {
	var result *core.ReviewItem
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makeReviewKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalReviewItem(val)
			return unmarshalErr
		})
	})
	return result, err
}

// DeleteReviewItem removes a resolved item from the queue.
func (r *ReviewRepository) DeleteReviewItem(ctx context.Context, id string) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeReviewKey(id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return tx.Delete(key)
	})
}

// ListReviewItems retrieves all pending items, oldest first.
func (r *ReviewRepository) ListReviewItems(ctx context.Context) ([]*core.ReviewItem, error) {
	var items []*core.ReviewItem
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reviewPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.ReviewItem
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalReviewItem(val)
				return err
			}); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(items, func(a, b *core.ReviewItem) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return items, nil
}
