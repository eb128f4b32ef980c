package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingPutAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	rec := &core.EmbeddingRecord{
		NoteId:       1,
		NoteVersion:  1,
		Vector:       []float32{0.1, 0.2, 0.3},
		ModelVersion: "embeddinggemma",
	}
	require.NoError(t, repos.Embeddings.PutEmbedding(ctx, rec))
	assert.True(t, rec.Current)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := repos.Embeddings.GetCurrentEmbedding(ctx, 1, "embeddinggemma")
	require.NoError(t, err)
	assert.Equal(t, rec.Vector, got.Vector)
	assert.True(t, got.Current)

	_, err = repos.Embeddings.GetCurrentEmbedding(ctx, 1, "other-model")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repos.Embeddings.GetCurrentEmbedding(ctx, 2, "embeddinggemma")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmbeddingCurrentUniqueness(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	// Three successive versions under one model.
	for v := uint32(1); v <= 3; v++ {
		require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
			NoteId:       7,
			NoteVersion:  v,
			Vector:       []float32{float32(v)},
			ModelVersion: "m1",
		}))
	}

	all, err := repos.Embeddings.GetEmbeddings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, all, 3)

	currentCount := 0
	for _, rec := range all {
		if rec.Current {
			currentCount++
			assert.Equal(t, uint32(3), rec.NoteVersion)
		}
	}
	assert.Equal(t, 1, currentCount)

	got, err := repos.Embeddings.GetCurrentEmbedding(ctx, 7, "m1")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, got.Vector)
}

func TestEmbeddingPerModelCurrent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
		NoteId: 5, NoteVersion: 1, Vector: []float32{1}, ModelVersion: "m1",
	}))
	require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
		NoteId: 5, NoteVersion: 1, Vector: []float32{2}, ModelVersion: "m2",
	}))

	// Each model version keeps its own current record.
	m1, err := repos.Embeddings.GetCurrentEmbedding(ctx, 5, "m1")
	require.NoError(t, err)
	assert.True(t, m1.Current)
	m2, err := repos.Embeddings.GetCurrentEmbedding(ctx, 5, "m2")
	require.NoError(t, err)
	assert.True(t, m2.Current)
}

func TestEmbeddingDelete(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
		NoteId: 9, NoteVersion: 1, Vector: []float32{1}, ModelVersion: "m1",
	}))
	require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
		NoteId: 9, NoteVersion: 2, Vector: []float32{2}, ModelVersion: "m1",
	}))

	require.NoError(t, repos.Embeddings.DeleteEmbeddings(ctx, 9))

	all, err := repos.Embeddings.GetEmbeddings(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestForEachCurrent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	for noteID := core.ID(1); noteID <= 3; noteID++ {
		require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
			NoteId: noteID, NoteVersion: 1, Vector: []float32{1}, ModelVersion: "m1",
		}))
		// Supersede note 2 so it has one current and one stale record.
		if noteID == 2 {
			require.NoError(t, repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
				NoteId: noteID, NoteVersion: 2, Vector: []float32{2}, ModelVersion: "m1",
			}))
		}
	}

	var seen []core.ID
	err := repos.Embeddings.ForEachCurrent(ctx, func(rec *core.EmbeddingRecord) (bool, error) {
		assert.True(t, rec.Current)
		seen = append(seen, rec.NoteId)
		return true, nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.ID{1, 2, 3}, seen)
}
