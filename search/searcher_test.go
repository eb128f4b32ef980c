package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/index"
	"github.com/poiesic/lorekeep/storage/badger"
)

const testModel = "test-model-v1"

type stubEmbedder struct {
	version string
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, s.version, nil
	}
	return []float32{1, 0, 0, 0}, s.version, nil
}

func (s *stubEmbedder) ModelVersion() string { return s.version }

type searchFixture struct {
	repos    *badger.Repositories
	index    *index.Index
	embedder *stubEmbedder
	searcher *Searcher
}

func newSearchFixture(t *testing.T, opts ...Option) *searchFixture {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	ix := index.New(testModel)
	embedder := &stubEmbedder{version: testModel, vectors: map[string][]float32{}}

	searcher, err := NewSearcher(repos.Notes, ix, embedder, opts...)
	require.NoError(t, err)
	// Pin the ranking clock so decay is identical across calls.
	searcher.ranker.now = func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	}
	return &searchFixture{repos: repos, index: ix, embedder: embedder, searcher: searcher}
}

// addNote stores a note with fixed timestamps and indexes its vector.
// Fixed timestamps keep the decay penalty identical across notes so
// ordering assertions exercise the signals under test, not clock skew.
func (f *searchFixture) addNote(t *testing.T, contents string, vector []float32, mutate func(*core.Note)) *core.Note {
	t.Helper()
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	note := &core.Note{
		Contents:   contents,
		Type:       core.NoteTypePermanent,
		Status:     core.NoteStatusActive,
		Quality:    0.8,
		Provenance: core.Provenance{Actor: core.ActorHuman},
		Version:    core.VersionInfo{Version: 1, CreatedAt: fixed, ModifiedAt: fixed},
	}
	if mutate != nil {
		mutate(note)
	}
	_, err := f.repos.Notes.AddNotes(context.Background(), note)
	require.NoError(t, err)
	if vector != nil {
		require.NoError(t, f.index.Upsert(note.Id, vector, testModel))
	}
	return note
}

func TestNewSearcher_RequiresDependencies(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	ix := index.New(testModel)
	embedder := &stubEmbedder{version: testModel}

	_, err = NewSearcher(nil, ix, embedder)
	assert.ErrorIs(t, err, ErrNoteRepositoryRequired)
	_, err = NewSearcher(repos.Notes, nil, embedder)
	assert.ErrorIs(t, err, ErrIndexRequired)
	_, err = NewSearcher(repos.Notes, ix, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestSearch_EmptyQuery(t *testing.T) {
	f := newSearchFixture(t)
	_, err := f.searcher.Search(context.Background(), &Query{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	_, err = f.searcher.Search(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_InvalidFilters(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter *Filter
	}{
		{"blank tag", &Filter{Tags: []string{"  "}}},
		{"unknown type", &Filter{Types: []core.NoteType{core.NoteType(99)}}},
		{"unknown actor", &Filter{Actor: core.ActorKind(7)}},
		{"inverted range", &Filter{
			CreatedAfter:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			CreatedBefore: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.searcher.Search(ctx, &Query{Text: "q", Filter: tc.filter})
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestSearch_EmptyIndexReturnsNoHits(t *testing.T) {
	f := newSearchFixture(t)
	results, err := f.searcher.Search(context.Background(), &Query{Text: "anything"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RanksByProximity(t *testing.T) {
	f := newSearchFixture(t)
	near := f.addNote(t, "badger transaction semantics", []float32{1, 0, 0, 0}, nil)
	mid := f.addNote(t, "vector index rebuild procedure", []float32{0.7, 0.7, 0, 0}, nil)
	far := f.addNote(t, "gardening notes for spring", []float32{0, 0, 1, 0}, nil)

	f.embedder.vectors["storage transactions"] = []float32{1, 0, 0, 0}
	results, err := f.searcher.Search(context.Background(), &Query{Text: "storage transactions", MaxHits: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, near.Id, results[0].Note.Id)
	assert.Equal(t, mid.Id, results[1].Note.Id)
	assert.Equal(t, far.Id, results[2].Note.Id)

	// An exact match scores its full semantic weight.
	assert.InDelta(t, 0.70, results[0].Breakdown.Semantic, 1e-4)
	assert.Greater(t, results[0].Breakdown.Quality, 0.0)

	// The breakdown reassembles into the score.
	b := results[0].Breakdown
	assert.InDelta(t, b.Semantic+b.Metadata+b.Quality+b.Type-b.Decay, results[0].Score, 1e-9)
}

func TestSearch_Deterministic(t *testing.T) {
	f := newSearchFixture(t)
	for i := range 8 {
		f.addNote(t, fmt.Sprintf("note number %d", i), []float32{1, float32(i) * 0.1, 0, 0}, nil)
	}

	first, err := f.searcher.Search(context.Background(), &Query{Text: "note", MaxHits: 5})
	require.NoError(t, err)
	for range 5 {
		again, err := f.searcher.Search(context.Background(), &Query{Text: "note", MaxHits: 5})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearch_TiebreakByNoteID(t *testing.T) {
	f := newSearchFixture(t)
	// Identical vectors and attributes force a score tie.
	for range 3 {
		f.addNote(t, "identical contents", []float32{1, 0, 0, 0}, nil)
	}

	results, err := f.searcher.Search(context.Background(), &Query{Text: "anything else entirely"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Less(t, results[0].Note.Id, results[1].Note.Id)
	assert.Less(t, results[1].Note.Id, results[2].Note.Id)
}

func TestSearch_ModelVersionMismatch(t *testing.T) {
	f := newSearchFixture(t)
	f.addNote(t, "content", []float32{1, 0, 0, 0}, nil)

	// A degraded embedder answering with a different model version must
	// fail loudly, never silently mix vector spaces.
	f.embedder.version = "fallback-blake2b-v1"
	_, err := f.searcher.Search(context.Background(), &Query{Text: "query"})
	assert.ErrorIs(t, err, ErrModelVersionMismatch)
}

func TestSearch_VectorDimensionMismatch(t *testing.T) {
	f := newSearchFixture(t)
	f.addNote(t, "content", []float32{1, 0, 0, 0}, nil)

	wrong := make([]float32, 1536)
	wrong[0] = 1
	_, err := f.searcher.Search(context.Background(), &Query{Vector: wrong})
	assert.ErrorIs(t, err, ErrModelVersionMismatch)
}

func TestSearch_EmbedderFailureSurfaces(t *testing.T) {
	f := newSearchFixture(t)
	f.addNote(t, "content", []float32{1, 0, 0, 0}, nil)
	f.embedder.err = errors.New("provider down")

	_, err := f.searcher.Search(context.Background(), &Query{Text: "query"})
	assert.ErrorContains(t, err, "provider down")
}

func TestSearch_StatusVisibility(t *testing.T) {
	f := newSearchFixture(t)
	active := f.addNote(t, "active note", []float32{1, 0, 0, 0}, nil)
	unreviewed := f.addNote(t, "unreviewed note", []float32{1, 0, 0, 0}, func(n *core.Note) {
		n.Status = core.NoteStatusUnreviewed
	})
	f.addNote(t, "withdrawn note", []float32{1, 0, 0, 0}, func(n *core.Note) {
		n.Status = core.NoteStatusWithdrawn
	})

	results, err := f.searcher.Search(context.Background(), &Query{Text: "note"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, active.Id, results[0].Note.Id)

	results, err = f.searcher.Search(context.Background(), &Query{Text: "note", IncludeUnreviewed: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []core.ID{results[0].Note.Id, results[1].Note.Id}
	assert.ElementsMatch(t, []core.ID{active.Id, unreviewed.Id}, ids)
}

func TestSearch_FilterByTypeAndTime(t *testing.T) {
	f := newSearchFixture(t)
	insight := f.addNote(t, "an insight", []float32{1, 0, 0, 0}, func(n *core.Note) {
		n.Type = core.NoteTypeInsight
	})
	f.addNote(t, "a fleeting capture", []float32{1, 0, 0, 0}, func(n *core.Note) {
		n.Type = core.NoteTypeFleeting
	})

	results, err := f.searcher.Search(context.Background(), &Query{
		Text:   "anything",
		Filter: &Filter{Types: []core.NoteType{core.NoteTypeInsight}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, insight.Id, results[0].Note.Id)

	// The fixture timestamps everything at 2026-08-01.
	results, err = f.searcher.Search(context.Background(), &Query{
		Text:   "anything",
		Filter: &Filter{CreatedBefore: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TagFilterBoostsMetadataSignal(t *testing.T) {
	f := newSearchFixture(t)
	tagged := f.addNote(t, "first note", []float32{1, 0, 0, 0}, func(n *core.Note) {
		n.Tags = []string{"golang"}
	})

	results, err := f.searcher.Search(context.Background(), &Query{
		Text:   "unrelated words",
		Filter: &Filter{Tags: []string{"golang"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tagged.Id, results[0].Note.Id)
	assert.InDelta(t, 0.20, results[0].Breakdown.Metadata, 1e-9)
}

func TestSearch_VerbatimMatchLiftsMetadata(t *testing.T) {
	f := newSearchFixture(t)
	verbatim := f.addNote(t, "badger uses lsm trees for storage", []float32{0.5, 0.5, 0.5, 0.5}, nil)
	f.addNote(t, "unrelated gardening advice", []float32{0.5, 0.5, 0.5, 0.5}, nil)

	results, err := f.searcher.Search(context.Background(), &Query{Text: "badger lsm trees"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, verbatim.Id, results[0].Note.Id)
	assert.Greater(t, results[0].Breakdown.Metadata, results[1].Breakdown.Metadata)
}

// Plan equivalence: the pre-filter and post-filter strategies must return
// identical results for the same query over the same corpus.
func TestSearch_PlanEquivalence(t *testing.T) {
	build := func(t *testing.T, opts ...Option) *searchFixture {
		f := newSearchFixture(t, opts...)
		for i := range 20 {
			mutate := func(n *core.Note) {
				if i%5 == 0 {
					n.Tags = []string{"rare"}
				}
			}
			f.addNote(t, fmt.Sprintf("document %d about storage engines", i),
				[]float32{1, float32(i) * 0.05, float32(i%3) * 0.1, 0}, mutate)
		}
		return f
	}

	query := &Query{Text: "storage engines", MaxHits: 5, Filter: &Filter{Tags: []string{"rare"}}}

	// Threshold 1.0 always pre-filters; threshold 0.0 never does.
	pre := build(t, WithSelectivityThreshold(1.0))
	post := build(t, WithSelectivityThreshold(0.0))

	preResults, err := pre.searcher.Search(context.Background(), query)
	require.NoError(t, err)
	postResults, err := post.searcher.Search(context.Background(), query)
	require.NoError(t, err)

	require.Equal(t, len(preResults), len(postResults))
	for i := range preResults {
		assert.Equal(t, preResults[i].Note.Id, postResults[i].Note.Id)
		assert.InDelta(t, preResults[i].Score, postResults[i].Score, 1e-9)
	}
}

// A candidate just outside the distance top-k can still win on the
// blended score. Both plans must rank the full filtered set, so the
// high-quality outlier surfaces identically under either strategy.
func TestSearch_PlanEquivalence_QualityOutlier(t *testing.T) {
	build := func(t *testing.T, opts ...Option) *searchFixture {
		f := newSearchFixture(t, opts...)
		vectors := [][]float32{{1, 0, 0, 0}, {1, 0.1, 0, 0}, {1, 0.2, 0, 0}}
		qualities := []float64{0.1, 0.1, 1.0}
		for i := range vectors {
			quality := qualities[i]
			f.addNote(t, fmt.Sprintf("entry %d on indexing", i), vectors[i], func(n *core.Note) {
				n.Tags = []string{"rare"}
				n.Quality = quality
			})
		}
		return f
	}

	query := &Query{Text: "indexing", MaxHits: 2, Filter: &Filter{Tags: []string{"rare"}}}

	pre := build(t, WithSelectivityThreshold(1.0))
	post := build(t, WithSelectivityThreshold(0.0), WithOverFetch(1))

	preResults, err := pre.searcher.Search(context.Background(), query)
	require.NoError(t, err)
	postResults, err := post.searcher.Search(context.Background(), query)
	require.NoError(t, err)

	require.Equal(t, len(preResults), len(postResults))
	for i := range preResults {
		assert.Equal(t, preResults[i].Note.Id, postResults[i].Note.Id, "position %d", i)
		assert.InDelta(t, preResults[i].Score, postResults[i].Score, 1e-9)
	}

	// The farthest note wins overall on quality.
	require.NotEmpty(t, preResults)
	assert.InDelta(t, 0.1, preResults[0].Breakdown.Quality, 1e-9)
}

func TestSearch_PlanSelection(t *testing.T) {
	f := newSearchFixture(t)
	for i := range 10 {
		mutate := func(n *core.Note) {
			if i == 0 {
				n.Tags = []string{"rare"}
			} else {
				n.Tags = []string{"common"}
			}
		}
		f.addNote(t, fmt.Sprintf("note %d", i), []float32{1, float32(i) * 0.1, 0, 0}, mutate)
	}

	monitor := &planRecorder{}
	_, err := f.searcher.SearchWithMonitor(context.Background(),
		&Query{Text: "note", Filter: &Filter{Tags: []string{"rare"}}}, monitor)
	require.NoError(t, err)
	assert.Equal(t, PlanPreFilter, monitor.plan)

	monitor = &planRecorder{}
	_, err = f.searcher.SearchWithMonitor(context.Background(),
		&Query{Text: "note", Filter: &Filter{Tags: []string{"common"}}}, monitor)
	require.NoError(t, err)
	assert.Equal(t, PlanPostFilter, monitor.plan)

	monitor = &planRecorder{}
	_, err = f.searcher.SearchWithMonitor(context.Background(), &Query{Text: "note"}, monitor)
	require.NoError(t, err)
	assert.Equal(t, PlanScan, monitor.plan)
}

func TestSearch_OverFetchWidensUntilPageFills(t *testing.T) {
	f := newSearchFixture(t, WithOverFetch(1))
	// Eight unreviewed notes sit closest to the query; the two active
	// ones must still both surface.
	var active []core.ID
	for i := range 10 {
		mutate := func(n *core.Note) {
			if i >= 8 {
				return
			}
			n.Status = core.NoteStatusUnreviewed
		}
		note := f.addNote(t, fmt.Sprintf("note %d", i), []float32{1, float32(i) * 0.01, 0, 0}, mutate)
		if i >= 8 {
			active = append(active, note.Id)
		}
	}

	results, err := f.searcher.Search(context.Background(), &Query{Text: "note", MaxHits: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []core.ID{results[0].Note.Id, results[1].Note.Id}
	assert.ElementsMatch(t, active, ids)
}

func TestDecayPenalty_Bounded(t *testing.T) {
	r := NewRanker(DefaultWeights())
	assert.Equal(t, 0.0, r.decayPenalty(0))
	assert.InDelta(t, 0.05, r.decayPenalty(30*24*time.Hour), 1e-9)

	// Very old notes saturate the penalty; in float64 it reaches the
	// bound exactly, never exceeds it.
	tenYears := 10 * 365 * 24 * time.Hour
	penalty := r.decayPenalty(tenYears)
	assert.LessOrEqual(t, penalty, 0.1)
	assert.Greater(t, penalty, 0.099)
}

func TestSearch_DecayConfigurable(t *testing.T) {
	f := newSearchFixture(t, WithDecay(time.Hour, 0.5))
	f.addNote(t, "an old note", []float32{1, 0, 0, 0}, nil)

	results, err := f.searcher.Search(context.Background(), &Query{Text: "old"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	// The fixture note is 27 days old; hour-long half-lives saturate
	// the configured penalty completely.
	assert.InDelta(t, 0.5, results[0].Breakdown.Decay, 1e-9)
}

type planRecorder struct {
	noopMonitor
	plan PlanKind
}

func (p *planRecorder) PlanChosen(plan PlanKind, _ int) { p.plan = plan }
