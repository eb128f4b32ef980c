package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage/badger"
)

const (
	oldModel = "embed-model-v1"
	newModel = "embed-model-v2"
)

// stubTarget re-embeds by writing a current record under newModel,
// recording which notes it touched.
type stubTarget struct {
	repos    *badger.Repositories
	touched  []core.ID
	failures map[core.ID]int
}

func (s *stubTarget) ReembedNote(ctx context.Context, noteID core.ID) error {
	if s.failures[noteID] > 0 {
		s.failures[noteID]--
		return errors.New("transient provider error")
	}
	s.touched = append(s.touched, noteID)

	note, err := s.repos.Notes.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	return s.repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
		NoteId:       noteID,
		NoteVersion:  note.Version.Version,
		Vector:       []float32{1, 0, 0, 0},
		ModelVersion: newModel,
	})
}

type reembedFixture struct {
	repos  *badger.Repositories
	target *stubTarget
	out    *bytes.Buffer
}

func newReembedFixture(t *testing.T) *reembedFixture {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	return &reembedFixture{
		repos:  repos,
		target: &stubTarget{repos: repos, failures: map[core.ID]int{}},
		out:    &bytes.Buffer{},
	}
}

func (f *reembedFixture) seedNote(t *testing.T, status core.NoteStatus, embeddedUnder string) *core.Note {
	t.Helper()
	ctx := context.Background()

	note := &core.Note{
		Contents:   "seeded note content",
		Type:       core.NoteTypePermanent,
		Status:     status,
		Quality:    0.8,
		Provenance: core.Provenance{Actor: core.ActorHuman},
	}
	_, err := f.repos.Notes.AddNotes(ctx, note)
	require.NoError(t, err)

	if embeddedUnder != "" {
		require.NoError(t, f.repos.Embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
			NoteId:       note.Id,
			NoteVersion:  note.Version.Version,
			Vector:       []float32{0, 1, 0, 0},
			ModelVersion: embeddedUnder,
		}))
	}
	return note
}

func (f *reembedFixture) newReembedder(t *testing.T, config *Config) *Reembedder {
	t.Helper()
	r, err := NewReembedder(f.repos.Notes, f.repos.Embeddings, f.target, newModel, config, f.out)
	require.NoError(t, err)
	return r
}

func TestNewReembedder_RequiresDependencies(t *testing.T) {
	f := newReembedFixture(t)

	_, err := NewReembedder(nil, f.repos.Embeddings, f.target, newModel, nil, nil)
	assert.ErrorIs(t, err, ErrNoteRepositoryRequired)
	_, err = NewReembedder(f.repos.Notes, nil, f.target, newModel, nil, nil)
	assert.ErrorIs(t, err, ErrEmbeddingRepositoryRequired)
	_, err = NewReembedder(f.repos.Notes, f.repos.Embeddings, nil, newModel, nil, nil)
	assert.ErrorIs(t, err, ErrReembedderRequired)
}

func TestRun_MigratesStaleNotes(t *testing.T) {
	f := newReembedFixture(t)
	ctx := context.Background()

	a := f.seedNote(t, core.NoteStatusActive, oldModel)
	b := f.seedNote(t, core.NoteStatusActive, oldModel)
	alreadyCurrent := f.seedNote(t, core.NoteStatusActive, newModel)
	withdrawn := f.seedNote(t, core.NoteStatusWithdrawn, oldModel)

	r := f.newReembedder(t, &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond})
	require.NoError(t, r.Run(ctx))

	assert.ElementsMatch(t, []core.ID{a.Id, b.Id}, f.target.touched)

	// Migrated notes now carry a current record under the new model;
	// the old records survive as history.
	for _, id := range []core.ID{a.Id, b.Id} {
		current, err := f.repos.Embeddings.GetCurrentEmbedding(ctx, id, newModel)
		require.NoError(t, err)
		assert.True(t, current.Current)

		all, err := f.repos.Embeddings.GetEmbeddings(ctx, id)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	}

	// Untouched: already current, and withdrawn.
	assert.NotContains(t, f.target.touched, alreadyCurrent.Id)
	assert.NotContains(t, f.target.touched, withdrawn.Id)
	assert.Contains(t, f.out.String(), "Migration complete")
}

func TestRun_Idempotent(t *testing.T) {
	f := newReembedFixture(t)
	f.seedNote(t, core.NoteStatusActive, oldModel)

	r := f.newReembedder(t, &Config{BatchSize: 10, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond})
	require.NoError(t, r.Run(context.Background()))
	require.Len(t, f.target.touched, 1)

	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, f.target.touched, 1)
	assert.Contains(t, f.out.String(), "0 notes to migrate")
}

func TestRun_StaleVersionDetected(t *testing.T) {
	f := newReembedFixture(t)
	ctx := context.Background()

	note := f.seedNote(t, core.NoteStatusActive, newModel)

	// Edit the note without re-embedding; the version 1 record under
	// the new model is now stale.
	note.Version.Version = 2
	_, err := f.repos.Notes.UpdateNotes(ctx, note)
	require.NoError(t, err)

	r := f.newReembedder(t, nil)
	require.NoError(t, r.Run(ctx))
	assert.Equal(t, []core.ID{note.Id}, f.target.touched)
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	f := newReembedFixture(t)
	note := f.seedNote(t, core.NoteStatusActive, oldModel)
	f.target.failures[note.Id] = 2

	r := f.newReembedder(t, &Config{BatchSize: 10, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond})
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []core.ID{note.Id}, f.target.touched)
}

func TestRun_ExhaustedRetriesFail(t *testing.T) {
	f := newReembedFixture(t)
	note := f.seedNote(t, core.NoteStatusActive, oldModel)
	f.target.failures[note.Id] = 10

	r := f.newReembedder(t, &Config{BatchSize: 10, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	err := r.Run(context.Background())
	assert.ErrorContains(t, err, "transient provider error")
}

func TestRun_EmptyCorpus(t *testing.T) {
	f := newReembedFixture(t)
	r := f.newReembedder(t, nil)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, f.out.String(), "0 notes to migrate")
}
