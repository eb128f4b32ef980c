package search

import "errors"

var (
	// ErrNoteRepositoryRequired is returned when a note repository is not provided.
	ErrNoteRepositoryRequired = errors.New("note repository required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyQuery indicates a query with neither text nor a vector.
	ErrEmptyQuery = errors.New("query requires text or a vector")

	// ErrModelVersionMismatch indicates a query vector produced under a
	// model version other than the one the index serves. Never retried;
	// the caller must re-embed the query or rebuild the index.
	ErrModelVersionMismatch = errors.New("query model version does not match index")

	// ErrInvalidFilter indicates a malformed filter. Rejected before any
	// retrieval work happens.
	ErrInvalidFilter = errors.New("invalid filter")
)
