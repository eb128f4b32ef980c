package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/ingest"
	"github.com/poiesic/lorekeep/storage"
	"github.com/poiesic/lorekeep/storage/badger"
)

type queueFixture struct {
	repos *badger.Repositories
	queue *Queue
}

func newTestQueue(t *testing.T, opts ...QueueOption) *queueFixture {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	queue, err := NewQueue(repos.Notes, repos.Tasks, repos.Reviews, repos.Audit, opts...)
	require.NoError(t, err)
	return &queueFixture{repos: repos, queue: queue}
}

// seedPending stores an unreviewed note, its pending-review task, and the
// queue item, the way a low-confidence ingestion leaves them.
func (f *queueFixture) seedPending(t *testing.T, confidence float64) *core.ReviewItem {
	t.Helper()
	ctx := context.Background()

	note := &core.Note{
		Contents:   "a short remark that scored below the threshold",
		Type:       core.NoteTypeLiterature,
		Status:     core.NoteStatusUnreviewed,
		Quality:    confidence,
		Provenance: core.Provenance{Actor: core.ActorHuman},
	}
	_, err := f.repos.Notes.AddNotes(ctx, note)
	require.NoError(t, err)

	task := &core.IngestionTask{
		Id:         uuid.NewString(),
		Source:     "inline",
		State:      core.TaskStatePendingReview,
		Confidence: confidence,
		NoteId:     note.Id,
	}
	require.NoError(t, f.repos.Tasks.AddTask(ctx, task))

	item := &core.ReviewItem{
		Id:      uuid.NewString(),
		TaskId:  task.Id,
		NoteId:  note.Id,
		Reasons: []core.ReviewReason{core.ReviewReasonLowConfidence},
	}
	require.NoError(t, f.repos.Reviews.AddReviewItem(ctx, item))
	return item
}

func TestNewQueue_RequiresDependencies(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = NewQueue(nil, repos.Tasks, repos.Reviews, repos.Audit)
	assert.ErrorIs(t, err, ingest.ErrNoteRepositoryRequired)

	_, err = NewQueue(repos.Notes, repos.Tasks, repos.Reviews, nil)
	assert.ErrorIs(t, err, ingest.ErrAuditRepositoryRequired)
}

func TestList_JoinsNoteAndTask(t *testing.T) {
	f := newTestQueue(t)
	first := f.seedPending(t, 0.4)
	time.Sleep(2 * time.Millisecond)
	second := f.seedPending(t, 0.5)

	items, err := f.queue.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Oldest first.
	assert.Equal(t, first.Id, items[0].Review.Id)
	assert.Equal(t, second.Id, items[1].Review.Id)

	require.NotNil(t, items[0].Note)
	require.NotNil(t, items[0].Task)
	assert.Equal(t, core.NoteStatusUnreviewed, items[0].Note.Status)
	assert.Equal(t, core.TaskStatePendingReview, items[0].Task.State)
	assert.InDelta(t, 0.4, items[0].Note.Quality, 1e-9)
}

func TestResolve_FinalizeActivatesNote(t *testing.T) {
	f := newTestQueue(t)
	item := f.seedPending(t, 0.6)
	ctx := context.Background()

	err := f.queue.Resolve(ctx, item.Id, DecisionFinalize, "reviewer", "content checks out")
	require.NoError(t, err)

	note, err := f.repos.Notes.GetNote(ctx, item.NoteId)
	require.NoError(t, err)
	assert.Equal(t, core.NoteStatusActive, note.Status)

	task, err := f.repos.Tasks.GetTask(ctx, item.TaskId)
	require.NoError(t, err)
	assert.Equal(t, core.TaskStateFinalized, task.State)

	items, err := f.repos.Reviews.ListReviewItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	records, err := f.repos.Audit.ListByNote(ctx, item.NoteId)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, core.AuditActionNoteFinalize, records[0].Action)
	assert.Equal(t, "reviewer", records[0].Actor)
	assert.Equal(t, "content checks out", records[0].Justification)
}

func TestResolve_RejectWithdrawsNote(t *testing.T) {
	indexer := &removeTracker{}
	f := newTestQueue(t, WithIndexer(indexer))
	item := f.seedPending(t, 0.3)
	ctx := context.Background()

	err := f.queue.Resolve(ctx, item.Id, DecisionReject, "reviewer", "duplicate of existing note")
	require.NoError(t, err)

	// Withdrawn, not deleted: still retrievable by ID.
	note, err := f.repos.Notes.GetNote(ctx, item.NoteId)
	require.NoError(t, err)
	assert.Equal(t, core.NoteStatusWithdrawn, note.Status)
	assert.False(t, note.Searchable(true))

	task, err := f.repos.Tasks.GetTask(ctx, item.TaskId)
	require.NoError(t, err)
	assert.Equal(t, core.TaskStateRejected, task.State)

	records, err := f.repos.Audit.ListByNote(ctx, item.NoteId)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, core.AuditActionNoteWithdraw, records[0].Action)

	assert.Equal(t, []core.ID{item.NoteId}, indexer.removed)
}

func TestResolve_UnknownItem(t *testing.T) {
	f := newTestQueue(t)
	err := f.queue.Resolve(context.Background(), "no-such-item", DecisionFinalize, "reviewer", "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolve_UnknownDecision(t *testing.T) {
	f := newTestQueue(t)
	item := f.seedPending(t, 0.4)
	err := f.queue.Resolve(context.Background(), item.Id, Decision(99), "reviewer", "")
	assert.Error(t, err)
}

func TestResolve_DoubleResolutionRejected(t *testing.T) {
	f := newTestQueue(t)
	item := f.seedPending(t, 0.4)
	ctx := context.Background()

	require.NoError(t, f.queue.Resolve(ctx, item.Id, DecisionFinalize, "reviewer", ""))
	err := f.queue.Resolve(ctx, item.Id, DecisionReject, "reviewer", "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolve_PolicyVeto(t *testing.T) {
	veto := ingest.PolicyFunc(func(*core.IngestionTask, core.TaskState) error {
		return ingest.ErrInvalidTransition
	})
	f := newTestQueue(t, WithPolicy(veto))
	item := f.seedPending(t, 0.4)
	ctx := context.Background()

	err := f.queue.Resolve(ctx, item.Id, DecisionFinalize, "reviewer", "")
	assert.ErrorIs(t, err, ingest.ErrInvalidTransition)

	// Nothing changed.
	note, err := f.repos.Notes.GetNote(ctx, item.NoteId)
	require.NoError(t, err)
	assert.Equal(t, core.NoteStatusUnreviewed, note.Status)
}

type removeTracker struct {
	removed []core.ID
}

func (r *removeTracker) Upsert(core.ID, []float32, string) error { return nil }
func (r *removeTracker) Remove(id core.ID)                       { r.removed = append(r.removed, id) }
