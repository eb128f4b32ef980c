package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

// LinkRepository implements storage.LinkRepository for BadgerDB.
// Links are written to two tables, keyed by source and by target, so
// both directions can be read with a single prefix scan.
type LinkRepository struct {
	backend *Backend
}

var _ storage.LinkRepository = (*LinkRepository)(nil)

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository(backend *Backend) *LinkRepository {
	return &LinkRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *LinkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *LinkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddLinks adds one or more links.
func (r *LinkRepository) AddLinks(ctx context.Context, links ...*core.Link) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, link := range links {
			if link.CreatedAt.IsZero() {
				link.CreatedAt = time.Now().UTC()
			}
			value := storage.MarshalLink(link)
			if err := tx.Set(makeLinkFromKey(link.From, link.To, link.Kind), value); err != nil {
				return err
			}
			if err := tx.Set(makeLinkToKey(link.From, link.To, link.Kind), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteLinks removes links by their exact tuples.
func (r *LinkRepository) DeleteLinks(ctx context.Context, links ...*core.Link) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, link := range links {
			if err := tx.Delete(makeLinkFromKey(link.From, link.To, link.Kind)); err != nil {
				return err
			}
			if err := tx.Delete(makeLinkToKey(link.From, link.To, link.Kind)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetLinksFrom retrieves all outgoing links of a note.
func (r *LinkRepository) GetLinksFrom(ctx context.Context, from core.ID) ([]*core.Link, error) {
	return r.scanLinks(ctx, makePartialLinkFromKey(from))
}

// GetLinksTo retrieves all incoming links of a note.
func (r *LinkRepository) GetLinksTo(ctx context.Context, to core.ID) ([]*core.Link, error) {
	return r.scanLinks(ctx, makePartialLinkToKey(to))
}

// DeleteLinksOf removes every link touching the given note.
func (r *LinkRepository) DeleteLinksOf(ctx context.Context, id core.ID) error {
	outgoing, err := r.GetLinksFrom(ctx, id)
	if err != nil {
		return err
	}
	incoming, err := r.GetLinksTo(ctx, id)
	if err != nil {
		return err
	}
	return r.DeleteLinks(ctx, append(outgoing, incoming...)...)
}

func (r *LinkRepository) scanLinks(ctx context.Context, prefix []byte) ([]*core.Link, error) {
	var links []*core.Link
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var link *core.Link
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				link, err = storage.UnmarshalLink(val)
				return err
			}); err != nil {
				return err
			}
			links = append(links, link)
		}
		return nil
	})
	return links, err
}
