package lorekeep

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorekeep/ai/mock"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/ingest"
	"github.com/poiesic/lorekeep/review"
	"github.com/poiesic/lorekeep/search"
)

var richDocument = strings.Repeat("zettelkasten practice links atomic notes into a web of durable knowledge ", 6)

func newTestDatabase(t *testing.T, opts ...DatabaseOption) *Database {
	t.Helper()
	opts = append([]DatabaseOption{WithInMemory(), WithProvider(mock.NewMockProvider())}, opts...)
	db, err := NewDatabase("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func waitTerminal(t *testing.T, db *Database, taskID string) *core.IngestionTask {
	t.Helper()
	var task *core.IngestionTask
	require.Eventually(t, func() bool {
		var err error
		task, err = db.TaskStatus(context.Background(), taskID)
		return err == nil && task.State.Terminal()
	}, 5*time.Second, 5*time.Millisecond)
	return task
}

func waitState(t *testing.T, db *Database, taskID string, state core.TaskState) *core.IngestionTask {
	t.Helper()
	var task *core.IngestionTask
	require.Eventually(t, func() bool {
		var err error
		task, err = db.TaskStatus(context.Background(), taskID)
		return err == nil && task.State == state
	}, 5*time.Second, 5*time.Millisecond)
	return task
}

func TestDatabase_IngestThenSearch(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	taskID, err := db.Submit(ctx, richDocument, &ingest.SubmitOptions{
		Tags: []string{"pkm"},
	})
	require.NoError(t, err)

	task := waitTerminal(t, db, taskID)
	require.Equal(t, core.TaskStateAutoFinalized, task.State)

	note, err := db.GetNote(ctx, task.NoteId)
	require.NoError(t, err)
	assert.Equal(t, core.NoteStatusActive, note.Status)

	results, err := db.Search(ctx, &search.Query{Text: note.Contents})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, note.Id, results[0].Note.Id)
	// Querying with the note's own text lands at distance zero.
	assert.InDelta(t, 0.70, results[0].Breakdown.Semantic, 1e-4)

	trail, err := db.AuditTrail(ctx, note.Id)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, core.AuditActionNoteCreate, trail[0].Action)
	assert.Equal(t, core.AuditActionEmbed, trail[1].Action)
}

func TestDatabase_ReviewFlow(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	taskID, err := db.Submit(ctx, "tiny", nil)
	require.NoError(t, err)
	// PENDING_REVIEW is a resting state, not a terminal one.
	task := waitState(t, db, taskID, core.TaskStatePendingReview)

	// Hidden from default search, visible on opt-in.
	results, err := db.Search(ctx, &search.Query{Text: "tiny"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = db.Search(ctx, &search.Query{Text: "tiny", IncludeUnreviewed: true})
	require.NoError(t, err)
	require.Len(t, results, 1)

	items, err := db.ReviewQueue().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, task.NoteId, items[0].Review.NoteId)

	err = db.ReviewQueue().Resolve(ctx, items[0].Review.Id, review.DecisionReject, "reviewer", "not worth keeping")
	require.NoError(t, err)

	// Withdrawn: gone from search entirely, still loadable by ID.
	results, err = db.Search(ctx, &search.Query{Text: "tiny", IncludeUnreviewed: true})
	require.NoError(t, err)
	assert.Empty(t, results)

	note, err := db.GetNote(ctx, task.NoteId)
	require.NoError(t, err)
	assert.Equal(t, core.NoteStatusWithdrawn, note.Status)

	final, err := db.TaskStatus(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, core.TaskStateRejected, final.State)
}

func TestDatabase_EditNote(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	taskID, err := db.Submit(ctx, richDocument, &ingest.SubmitOptions{Tags: []string{"pkm"}})
	require.NoError(t, err)
	task := waitTerminal(t, db, taskID)
	require.Equal(t, core.TaskStateAutoFinalized, task.State)

	revised := "the revised note connects spaced repetition with incremental writing"
	require.NoError(t, db.EditNote(ctx, task.NoteId, revised, "human", "rewrote for clarity"))

	note, err := db.GetNote(ctx, task.NoteId)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), note.Version.Version)
	assert.Equal(t, revised, note.Contents)

	// The new content is what search now matches.
	results, err := db.Search(ctx, &search.Query{Text: revised})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.70, results[0].Breakdown.Semantic, 1e-4)

	trail, err := db.AuditTrail(ctx, note.Id)
	require.NoError(t, err)
	actions := make([]string, 0, len(trail))
	for _, r := range trail {
		actions = append(actions, r.Action)
	}
	assert.Contains(t, actions, core.AuditActionNoteEdit)
	assert.Contains(t, actions, core.AuditActionReembed)
}

func TestDatabase_IndexRebuiltOnReopen(t *testing.T) {
	dir := t.TempDir()
	provider := mock.NewMockProvider()

	db, err := NewDatabase(dir, WithProvider(provider))
	require.NoError(t, err)

	ctx := context.Background()
	taskID, err := db.Submit(ctx, richDocument, &ingest.SubmitOptions{Tags: []string{"pkm"}})
	require.NoError(t, err)
	task := waitTerminal(t, db, taskID)
	require.Equal(t, core.TaskStateAutoFinalized, task.State)

	note, err := db.GetNote(ctx, task.NoteId)
	require.NoError(t, err)
	contents := note.Contents
	require.NoError(t, db.Close())

	// Reopen: the index must be reconstructed from the embedding store.
	db, err = NewDatabase(dir, WithProvider(provider))
	require.NoError(t, err)
	defer db.Close()

	results, err := db.Search(ctx, &search.Query{Text: contents})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, task.NoteId, results[0].Note.Id)
}

func TestDatabase_ReembedWhenCurrent(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	taskID, err := db.Submit(ctx, richDocument, &ingest.SubmitOptions{Tags: []string{"pkm"}})
	require.NoError(t, err)
	waitTerminal(t, db, taskID)

	out := &bytes.Buffer{}
	require.NoError(t, db.Reembed(ctx, nil, out))
	assert.Contains(t, out.String(), "0 notes to migrate")
}

func TestDatabase_RebuildIndexIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	taskID, err := db.Submit(ctx, richDocument, &ingest.SubmitOptions{Tags: []string{"pkm"}})
	require.NoError(t, err)
	task := waitTerminal(t, db, taskID)

	require.NoError(t, db.RebuildIndex(ctx))
	require.NoError(t, db.RebuildIndex(ctx))

	note, err := db.GetNote(ctx, task.NoteId)
	require.NoError(t, err)
	results, err := db.Search(ctx, &search.Query{Text: note.Contents})
	require.NoError(t, err)
	require.Len(t, results, 1)
}
