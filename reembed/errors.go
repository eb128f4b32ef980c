package reembed

import "errors"

var (
	// ErrNoteRepositoryRequired is returned when a note repository is not provided.
	ErrNoteRepositoryRequired = errors.New("note repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrReembedderRequired is returned when a note reembedder is not provided.
	ErrReembedderRequired = errors.New("note reembedder required")
)
