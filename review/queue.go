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

// Package review resolves the human review queue that low-confidence
// ingestions park in. A reviewer either finalizes an item, activating
// its note, or rejects it, withdrawing the note from search while
// preserving its records for audit.
package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/ingest"
	"github.com/poiesic/lorekeep/storage"
)

// Decision is a reviewer's verdict on a queue item.
type Decision int

const (
	// DecisionFinalize accepts the note into the searchable corpus.
	DecisionFinalize Decision = iota + 1
	// DecisionReject withdraws the note. Its records are preserved but
	// it no longer appears in search results.
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionFinalize:
		return "finalize"
	case DecisionReject:
		return "reject"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Item pairs a queue entry with the note under review, so reviewers see
// the content and its assessed quality without a second lookup.
type Item struct {
	Review *core.ReviewItem
	Note   *core.Note
	Task   *core.IngestionTask
}

// Queue resolves pending review items. Resolution is atomic: the note
// status change, the task transition, the audit entry, and the queue
// removal commit together.
type Queue struct {
	notes   storage.NoteRepository
	tasks   storage.TaskRepository
	reviews storage.ReviewRepository
	audit   storage.AuditRepository

	policy  ingest.Policy
	indexer ingest.Indexer
	logger  *slog.Logger
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithPolicy sets the transition policy. Default is ingest.DefaultPolicy.
func WithPolicy(policy ingest.Policy) QueueOption {
	return func(q *Queue) {
		if policy != nil {
			q.policy = policy
		}
	}
}

// WithIndexer attaches a vector index so rejected notes drop out of
// search immediately instead of waiting for a rebuild.
func WithIndexer(indexer ingest.Indexer) QueueOption {
	return func(q *Queue) {
		q.indexer = indexer
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// NewQueue creates a review queue over the given repositories.
func NewQueue(
	notes storage.NoteRepository,
	tasks storage.TaskRepository,
	reviews storage.ReviewRepository,
	audit storage.AuditRepository,
	opts ...QueueOption,
) (*Queue, error) {
	if notes == nil {
		return nil, ingest.ErrNoteRepositoryRequired
	}
	if tasks == nil {
		return nil, ingest.ErrTaskRepositoryRequired
	}
	if reviews == nil {
		return nil, ingest.ErrReviewRepositoryRequired
	}
	if audit == nil {
		return nil, ingest.ErrAuditRepositoryRequired
	}

	q := &Queue{
		notes:   notes,
		tasks:   tasks,
		reviews: reviews,
		audit:   audit,
		policy:  ingest.DefaultPolicy(),
		logger:  slog.Default().With("component", "review"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// List returns the pending items, oldest first, each joined with its
// note and task. An item whose note or task has vanished is still
// listed so it can be inspected and resolved.
func (q *Queue) List(ctx context.Context) ([]*Item, error) {
	pending, err := q.reviews.ListReviewItems(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*Item, 0, len(pending))
	for _, r := range pending {
		item := &Item{Review: r}
		if note, err := q.notes.GetNote(ctx, r.NoteId); err == nil {
			item.Note = note
		}
		if task, err := q.tasks.GetTask(ctx, r.TaskId); err == nil {
			item.Task = task
		}
		items = append(items, item)
	}
	return items, nil
}

// Resolve applies a reviewer's decision to a queue item. On finalize the
// note becomes active and the task moves to FINALIZED; on reject the
// note is withdrawn and the task moves to REJECTED. Either way the item
// leaves the queue and the decision lands in the audit ledger, all in
// one transaction.
func (q *Queue) Resolve(ctx context.Context, itemID string, decision Decision, actor string, justification string) error {
	item, err := q.reviews.GetReviewItem(ctx, itemID)
	if err != nil {
		return err
	}
	task, err := q.tasks.GetTask(ctx, item.TaskId)
	if err != nil {
		return err
	}
	note, err := q.notes.GetNote(ctx, item.NoteId)
	if err != nil {
		return err
	}

	var (
		nextState  core.TaskState
		nextStatus core.NoteStatus
		action     string
	)
	switch decision {
	case DecisionFinalize:
		nextState = core.TaskStateFinalized
		nextStatus = core.NoteStatusActive
		action = core.AuditActionNoteFinalize
	case DecisionReject:
		nextState = core.TaskStateRejected
		nextStatus = core.NoteStatusWithdrawn
		action = core.AuditActionNoteWithdraw
	default:
		return fmt.Errorf("unknown decision %d", int(decision))
	}

	if err := q.policy.Allow(task, nextState); err != nil {
		return err
	}

	err = q.notes.WithTransaction(ctx, func(ctx context.Context) error {
		note.Status = nextStatus
		if _, err := q.notes.UpdateNotes(ctx, note); err != nil {
			return err
		}

		task.State = nextState
		if err := q.tasks.UpdateTask(ctx, task); err != nil {
			return err
		}

		if err := q.audit.Append(ctx, &core.AuditRecord{
			Actor:         actor,
			Action:        action,
			NoteId:        note.Id,
			NoteVersion:   note.Version.Version,
			Justification: justification,
		}); err != nil {
			return err
		}

		return q.reviews.DeleteReviewItem(ctx, item.Id)
	})
	if err != nil {
		return err
	}

	if decision == DecisionReject && q.indexer != nil {
		q.indexer.Remove(note.Id)
	}
	q.logger.Info("review resolved", "item", itemID, "note", note.Id, "decision", decision, "actor", actor)
	return nil
}
