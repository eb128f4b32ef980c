// Package reembed migrates stored embeddings to a new model version.
// It scans the corpus for notes whose current embedding is missing or
// stale under the configured model, recomputes them in batches with
// retry, and reports progress. Superseded records are kept, so the
// migration is resumable and idempotent.
package reembed
