package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage/badger"
)

func seedNotes(t *testing.T, repos *badger.Repositories, count int) {
	t.Helper()
	for i := range count {
		note := &core.Note{
			Contents:   fmt.Sprintf("note %d", i),
			Type:       core.NoteTypeFleeting,
			Status:     core.NoteStatusActive,
			Provenance: core.Provenance{Actor: core.ActorHuman},
		}
		_, err := repos.Notes.AddNotes(context.Background(), note)
		require.NoError(t, err)
	}
}

func TestNoteIterator_Batches(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	seedNotes(t, repos, 25)

	it := NewNoteIterator(repos.Notes, 10)
	var sizes []int
	var seen []core.ID
	err = it.ForEach(context.Background(), func(batch []*core.Note) error {
		sizes = append(sizes, len(batch))
		for _, n := range batch {
			seen = append(seen, n.Id)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Len(t, seen, 25)
	assert.IsIncreasing(t, seen)
}

func TestNoteIterator_EmptyCorpus(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	it := NewNoteIterator(repos.Notes, 10)
	calls := 0
	err = it.ForEach(context.Background(), func([]*core.Note) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestNoteIterator_StopsOnError(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	seedNotes(t, repos, 30)

	boom := errors.New("boom")
	it := NewNoteIterator(repos.Notes, 10)
	calls := 0
	err = it.ForEach(context.Background(), func([]*core.Note) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestNoteIterator_ContextCancellation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	seedNotes(t, repos, 30)

	ctx, cancel := context.WithCancel(context.Background())
	it := NewNoteIterator(repos.Notes, 10)
	calls := 0
	err = it.ForEach(ctx, func([]*core.Note) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNoteIterator_DefaultBatchSize(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	it := NewNoteIterator(repos.Notes, 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}
