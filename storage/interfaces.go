package storage

import (
	"context"

	"github.com/poiesic/lorekeep/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a single write transaction.
	// Repository calls made through the context passed to fn join that
	// transaction, so writes across repositories commit or roll back as
	// one unit. If fn returns an error, nothing is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// NoteRepository provides operations for managing notes.
type NoteRepository interface {
	Repository
	// AddNotes adds one or more notes to storage.
	// For notes with ID=0, generates new IDs from sequence.
	// Sets version and creation timestamps if not already set.
	// Returns the notes with generated IDs and timestamps populated.
	AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// UpdateNotes updates existing notes.
	// Bumps ModifiedAt automatically; the caller owns the Version counter.
	// Returns ErrNotFound if any note doesn't exist.
	UpdateNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// DeleteNotes removes notes by their IDs, including index entries.
	// Returns ErrNotFound if any note doesn't exist.
	DeleteNotes(ctx context.Context, ids ...core.ID) error

	// GetNote retrieves a single note by ID.
	// Returns ErrNotFound if the note doesn't exist.
	GetNote(ctx context.Context, id core.ID) (*core.Note, error)

	// GetNotes retrieves multiple notes by their IDs.
	// Returns only the notes that exist (no error for missing notes).
	GetNotes(ctx context.Context, ids ...core.ID) ([]*core.Note, error)

	// GetNoteIDsByTag retrieves IDs of notes carrying the given tag.
	GetNoteIDsByTag(ctx context.Context, tag string) ([]core.ID, error)

	// ForEachNote iterates over every stored note in ID order.
	// Iteration stops early if fn returns false or an error.
	ForEachNote(ctx context.Context, fn func(note *core.Note) (bool, error)) error

	// CountNotes returns the total number of stored notes.
	CountNotes(ctx context.Context) (int, error)
}

// LinkRepository provides operations for typed links between notes.
type LinkRepository interface {
	Repository
	// AddLinks adds one or more links. Re-adding an existing
	// (from, to, kind) tuple overwrites it.
	AddLinks(ctx context.Context, links ...*core.Link) error

	// DeleteLinks removes links by their exact tuples.
	DeleteLinks(ctx context.Context, links ...*core.Link) error

	// GetLinksFrom retrieves all outgoing links of a note.
	GetLinksFrom(ctx context.Context, from core.ID) ([]*core.Link, error)

	// GetLinksTo retrieves all incoming links of a note.
	GetLinksTo(ctx context.Context, to core.ID) ([]*core.Link, error)

	// DeleteLinksOf removes every link touching the given note.
	DeleteLinksOf(ctx context.Context, id core.ID) error
}

// EmbeddingRepository provides operations for embedding records.
// Embeddings are versioned per (note, model version); at most one record
// per pair is current at any time.
type EmbeddingRepository interface {
	Repository
	// PutEmbedding stores an embedding record and marks it current,
	// demoting any previously current record for the same note and
	// model version in the same transaction.
	PutEmbedding(ctx context.Context, record *core.EmbeddingRecord) error

	// GetCurrentEmbedding retrieves the current embedding for a note
	// under the given model version.
	// Returns ErrNotFound if none exists.
	GetCurrentEmbedding(ctx context.Context, noteID core.ID, modelVersion string) (*core.EmbeddingRecord, error)

	// GetEmbeddings retrieves all embedding records of a note, current
	// and superseded, across model versions.
	GetEmbeddings(ctx context.Context, noteID core.ID) ([]*core.EmbeddingRecord, error)

	// DeleteEmbeddings removes all embedding records of a note.
	DeleteEmbeddings(ctx context.Context, noteID core.ID) error

	// ForEachCurrent iterates over every current embedding record.
	// Iteration stops early if fn returns false or an error.
	ForEachCurrent(ctx context.Context, fn func(record *core.EmbeddingRecord) (bool, error)) error
}

// TaskRepository provides operations for ingestion tasks.
type TaskRepository interface {
	Repository
	// AddTask stores a new ingestion task.
	// Sets creation timestamps if not already set.
	AddTask(ctx context.Context, task *core.IngestionTask) error

	// UpdateTask updates an existing task, bumping UpdatedAt.
	// Returns ErrNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, task *core.IngestionTask) error

	// GetTask retrieves a task by its ID.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, id string) (*core.IngestionTask, error)

	// ListTasksByState retrieves all tasks in the given state,
	// ordered by creation time.
	ListTasksByState(ctx context.Context, state core.TaskState) ([]*core.IngestionTask, error)
}

// ReviewRepository provides operations for the human review queue.
type ReviewRepository interface {
	Repository
	// AddReviewItem enqueues an item for review.
	AddReviewItem(ctx context.Context, item *core.ReviewItem) error

	// GetReviewItem retrieves a queue item by its ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetReviewItem(ctx context.Context, id string) (*core.ReviewItem, error)

	// DeleteReviewItem removes a resolved item from the queue.
	// Returns ErrNotFound if the item doesn't exist.
	DeleteReviewItem(ctx context.Context, id string) error

	// ListReviewItems retrieves all pending items, oldest first.
	ListReviewItems(ctx context.Context) ([]*core.ReviewItem, error)
}

// AuditRepository provides the append-only audit ledger.
// There are deliberately no update or delete operations.
type AuditRepository interface {
	Repository
	// Append writes an audit record, assigning its sequence number and
	// timestamp. The record is immutable once written.
	Append(ctx context.Context, record *core.AuditRecord) error

	// ListByNote retrieves all audit records touching a note, in
	// sequence order.
	ListByNote(ctx context.Context, noteID core.ID) ([]*core.AuditRecord, error)

	// ListSince retrieves audit records with sequence >= seq, up to
	// limit records, in sequence order. A limit of 0 means no limit.
	ListSince(ctx context.Context, seq uint64, limit int) ([]*core.AuditRecord, error)
}
