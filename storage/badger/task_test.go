package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	task := &core.IngestionTask{
		Id:     "task-1",
		Source: "inbox/doc.md",
		State:  core.TaskStateReceived,
	}
	require.NoError(t, repos.Tasks.AddTask(ctx, task))
	assert.False(t, task.CreatedAt.IsZero())

	task.State = core.TaskStateExtracting
	require.NoError(t, repos.Tasks.UpdateTask(ctx, task))

	got, err := repos.Tasks.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, core.TaskStateExtracting, got.State)
	assert.Equal(t, "inbox/doc.md", got.Source)
}

func TestTaskNotFound(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	_, err := repos.Tasks.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = repos.Tasks.UpdateTask(ctx, &core.IngestionTask{Id: "missing"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListTasksByState(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	now := time.Now().UTC()
	tasks := []*core.IngestionTask{
		{Id: "t1", Source: "a", State: core.TaskStateFailed, CreatedAt: now.Add(-2 * time.Hour)},
		{Id: "t2", Source: "b", State: core.TaskStatePendingReview, CreatedAt: now.Add(-1 * time.Hour)},
		{Id: "t3", Source: "c", State: core.TaskStateFailed, CreatedAt: now},
	}
	for _, task := range tasks {
		require.NoError(t, repos.Tasks.AddTask(ctx, task))
	}

	failed, err := repos.Tasks.ListTasksByState(ctx, core.TaskStateFailed)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "t1", failed[0].Id)
	assert.Equal(t, "t3", failed[1].Id)

	pending, err := repos.Tasks.ListTasksByState(ctx, core.TaskStatePendingReview)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "t2", pending[0].Id)
}

func TestReviewQueue(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	now := time.Now().UTC()
	items := []*core.ReviewItem{
		{Id: "r2", TaskId: "t2", NoteId: 2, Reasons: []core.ReviewReason{core.ReviewReasonLowConfidence}, CreatedAt: now},
		{Id: "r1", TaskId: "t1", NoteId: 1, Reasons: []core.ReviewReason{core.ReviewReasonContentEdit}, CreatedAt: now.Add(-time.Hour)},
	}
	for _, item := range items {
		require.NoError(t, repos.Reviews.AddReviewItem(ctx, item))
	}

	listed, err := repos.Reviews.ListReviewItems(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Oldest first.
	assert.Equal(t, "r1", listed[0].Id)
	assert.Equal(t, "r2", listed[1].Id)

	got, err := repos.Reviews.GetReviewItem(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, core.ID(1), got.NoteId)

	require.NoError(t, repos.Reviews.DeleteReviewItem(ctx, "r1"))
	_, err = repos.Reviews.GetReviewItem(ctx, "r1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repos.Reviews.DeleteReviewItem(ctx, "r1"), storage.ErrNotFound)
}
