package ingest

import "errors"

var (
	// ErrNoteRepositoryRequired is returned when a note repository is not provided.
	ErrNoteRepositoryRequired = errors.New("note repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrTaskRepositoryRequired is returned when a task repository is not provided.
	ErrTaskRepositoryRequired = errors.New("task repository required")

	// ErrReviewRepositoryRequired is returned when a review repository is not provided.
	ErrReviewRepositoryRequired = errors.New("review repository required")

	// ErrAuditRepositoryRequired is returned when an audit repository is not provided.
	ErrAuditRepositoryRequired = errors.New("audit repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrAlreadyInProgress indicates a task that already has an in-flight
	// state machine run. Re-submission is rejected, never queued twice.
	ErrAlreadyInProgress = errors.New("task already in progress")

	// ErrCancellationTooLate indicates a cancellation request that arrived
	// after the task began writing entity, embedding, or audit records.
	ErrCancellationTooLate = errors.New("cancellation too late")

	// ErrTaskNotRetryable indicates a retry request for a task that is not
	// in the FAILED state.
	ErrTaskNotRetryable = errors.New("task is not retryable")

	// ErrNoteNotEditable indicates an edit against a note whose status
	// does not permit content edits.
	ErrNoteNotEditable = errors.New("note is not editable")

	// ErrInvalidTransition indicates a state transition the policy or the
	// state machine graph forbids.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidMaxAttempts is returned when retry is configured with
	// a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than zero")
)
