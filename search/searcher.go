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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/index"
	"github.com/poiesic/lorekeep/storage"
)

const (
	defaultMaxHits = 10

	// Over-fetch multiplier for the post-filter plan. The index returns
	// this many times the requested hits so filtering still leaves a
	// full result page in the common case.
	defaultOverFetch = 3

	// Candidate fraction below which the planner resolves the filter
	// first and restricts the vector search to the candidate set.
	defaultSelectivityThreshold = 0.2
)

// Embedder resolves query text to a vector. Satisfied by
// ai.FailoverEmbedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, string, error)
	ModelVersion() string
}

// Query describes one search request.
type Query struct {
	// Text is embedded to produce the query vector.
	Text string

	// Vector is used directly when Text is empty. It must come from the
	// model version the index serves.
	Vector []float32

	// MaxHits caps the result count. Defaults to 10.
	MaxHits int

	// Filter restricts results by structured metadata.
	Filter *Filter

	// IncludeUnreviewed admits notes still awaiting review. Withdrawn
	// and deleted notes are excluded regardless.
	IncludeUnreviewed bool
}

// Searcher ranks notes by blended semantic and metadata relevance.
// Identical queries over identical state return identical results in
// identical order.
type Searcher struct {
	notes    storage.NoteRepository
	index    *index.Index
	embedder Embedder
	ranker   *Ranker

	overFetch            int
	selectivityThreshold float64
	logger               *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithWeights sets the ranking signal weights.
func WithWeights(weights Weights) Option {
	return func(s *Searcher) error {
		s.ranker.weights = weights
		return nil
	}
}

// WithDecay sets the recency decay half-life and the maximum penalty a
// note's age can cost it. Defaults: 30 days, 0.1.
func WithDecay(halfLife time.Duration, maxPenalty float64) Option {
	return func(s *Searcher) error {
		if halfLife <= 0 {
			return fmt.Errorf("decay half-life must be positive, got %v", halfLife)
		}
		if maxPenalty < 0 || maxPenalty > 1 {
			return fmt.Errorf("max decay penalty must be in [0,1], got %v", maxPenalty)
		}
		s.ranker.halfLife = halfLife
		s.ranker.maxPenalty = maxPenalty
		return nil
	}
}

// WithOverFetch sets the post-filter over-fetch multiplier. Default 3.
func WithOverFetch(factor int) Option {
	return func(s *Searcher) error {
		if factor < 1 {
			return fmt.Errorf("over-fetch factor must be positive, got %d", factor)
		}
		s.overFetch = factor
		return nil
	}
}

// WithSelectivityThreshold sets the candidate fraction below which the
// planner pre-filters. Default 0.2.
func WithSelectivityThreshold(threshold float64) Option {
	return func(s *Searcher) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("selectivity threshold must be in [0,1], got %v", threshold)
		}
		s.selectivityThreshold = threshold
		return nil
	}
}

// NewSearcher creates a new searcher over the given repositories and index.
func NewSearcher(
	notes storage.NoteRepository,
	ix *index.Index,
	embedder Embedder,
	opts ...Option,
) (*Searcher, error) {
	if notes == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		notes:                notes,
		index:                ix,
		embedder:             embedder,
		ranker:               NewRanker(DefaultWeights()),
		overFetch:            defaultOverFetch,
		selectivityThreshold: defaultSelectivityThreshold,
		logger:               slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search executes a query and returns ranked results with their score
// breakdowns.
func (s *Searcher) Search(ctx context.Context, query *Query) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor executes a query with observation hooks.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query *Query, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if query == nil || (query.Text == "" && len(query.Vector) == 0) {
		return nil, ErrEmptyQuery
	}
	if err := query.Filter.Validate(); err != nil {
		return nil, err
	}
	maxHits := query.MaxHits
	if maxHits <= 0 {
		maxHits = defaultMaxHits
	}
	monitor.Start(query)

	vector, err := s.resolveVector(ctx, query)
	if err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(s.index.ModelVersion(), len(vector))

	if s.index.Len() == 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	// One clock reading per search: every candidate decays against the
	// same instant, in the planner's bound and in the final ranking.
	now := s.ranker.now()

	var scored []*candidate
	if candidates, ok, err := s.preFilterCandidates(ctx, query, monitor); err != nil {
		return nil, err
	} else if ok {
		scored, err = s.searchWithin(ctx, vector, candidates, monitor)
		if err != nil {
			return nil, err
		}
	} else {
		scored, err = s.searchThenFilter(ctx, vector, maxHits, query, now, monitor)
		if err != nil {
			return nil, err
		}
	}

	results := s.rank(scored, query, maxHits, now)
	monitor.Finish(results)
	return results, nil
}

// resolveVector embeds query text, or validates a caller-supplied vector
// against the index. A vector of the wrong shape is a model mismatch,
// never silently truncated or padded.
func (s *Searcher) resolveVector(ctx context.Context, query *Query) ([]float32, error) {
	if query.Text != "" {
		vector, usedModel, err := s.embedder.Embed(ctx, query.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		if usedModel != s.index.ModelVersion() {
			return nil, fmt.Errorf("%w: query %q, index %q", ErrModelVersionMismatch, usedModel, s.index.ModelVersion())
		}
		return vector, nil
	}

	if dims := s.index.Dimensions(); dims != 0 && len(query.Vector) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrModelVersionMismatch, len(query.Vector), dims)
	}
	return query.Vector, nil
}

type candidate struct {
	note     *core.Note
	distance float64
}

// preFilterCandidates resolves tag constraints to a candidate note set
// when the filter is selective enough. Returns ok=false when the planner
// should fall back to post-filtering.
func (s *Searcher) preFilterCandidates(ctx context.Context, query *Query, monitor SearchMonitor) (map[core.ID]*core.Note, bool, error) {
	if query.Filter.Empty() || len(query.Filter.Tags) == 0 {
		return nil, false, nil
	}

	total, err := s.notes.CountNotes(ctx)
	if err != nil {
		return nil, false, err
	}
	if total == 0 {
		return map[core.ID]*core.Note{}, true, nil
	}

	idSet := make(map[core.ID]bool)
	for _, tag := range query.Filter.Tags {
		ids, err := s.notes.GetNoteIDsByTag(ctx, tag)
		if err != nil {
			return nil, false, err
		}
		for _, id := range ids {
			idSet[id] = true
		}
	}

	if float64(len(idSet))/float64(total) > s.selectivityThreshold {
		return nil, false, nil
	}

	ids := make([]core.ID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	notes, err := s.notes.GetNotes(ctx, ids...)
	if err != nil {
		return nil, false, err
	}

	candidates := make(map[core.ID]*core.Note, len(notes))
	for _, note := range notes {
		if note.Searchable(query.IncludeUnreviewed) && query.Filter.Matches(note) {
			candidates[note.Id] = note
		}
	}
	monitor.PlanChosen(PlanPreFilter, len(candidates))
	return candidates, true, nil
}

// searchWithin runs the vector search restricted to a fully filtered
// candidate set. Every candidate is scored: the blended score is not
// monotone in distance, so truncating by distance here would rank a
// different set than the post-filter plan.
func (s *Searcher) searchWithin(_ context.Context, vector []float32, candidates map[core.ID]*core.Note, monitor SearchMonitor) ([]*candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	matches, err := s.index.Query(vector, len(candidates), func(id core.ID) bool {
		_, ok := candidates[id]
		return ok
	})
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	scored := make([]*candidate, 0, len(matches))
	for _, match := range matches {
		if note := candidates[match.NoteId]; note != nil {
			scored = append(scored, &candidate{note: note, distance: match.Distance})
		}
	}
	return scored, nil
}

// searchThenFilter over-fetches from the index and filters the hits,
// widening the fetch until no unseen candidate can still displace the
// current top hits or the index is exhausted. The stopping bound keeps
// this plan's output identical to the pre-filter plan's: an unseen
// candidate sits at or beyond the worst fetched distance, so its score
// is capped by the ranker's ceiling there.
func (s *Searcher) searchThenFilter(ctx context.Context, vector []float32, maxHits int, query *Query, now time.Time, monitor SearchMonitor) ([]*candidate, error) {
	plan := PlanPostFilter
	if query.Filter.Empty() {
		plan = PlanScan
	}
	monitor.PlanChosen(plan, s.index.Len())

	k := maxHits * s.overFetch
	for {
		matches, err := s.index.Query(vector, k, nil)
		if err != nil {
			return nil, err
		}
		monitor.AfterVectorSearch(matches)

		ids := make([]core.ID, 0, len(matches))
		for _, match := range matches {
			ids = append(ids, match.NoteId)
		}
		notes, err := s.notes.GetNotes(ctx, ids...)
		if err != nil {
			return nil, err
		}
		byID := make(map[core.ID]*core.Note, len(notes))
		for _, note := range notes {
			byID[note.Id] = note
		}

		scored := make([]*candidate, 0, len(matches))
		for _, match := range matches {
			note := byID[match.NoteId]
			if note == nil {
				// Index ahead of storage; a rebuild will reconcile.
				s.logger.Warn("indexed note missing from storage", "note", match.NoteId)
				continue
			}
			if !note.Searchable(query.IncludeUnreviewed) || !query.Filter.Matches(note) {
				continue
			}
			scored = append(scored, &candidate{note: note, distance: match.Distance})
		}

		if len(matches) >= s.index.Len() {
			return scored, nil
		}
		if len(scored) >= maxHits {
			ranked := s.rank(scored, query, maxHits, now)
			kth := ranked[len(ranked)-1].Score
			worst := matches[len(matches)-1].Distance
			if s.ranker.ScoreCeiling(worst) < kth {
				return scored, nil
			}
		}
		k *= 2
	}
}

// rank scores the surviving candidates and orders them by score
// descending, breaking ties by note ID ascending.
func (s *Searcher) rank(scored []*candidate, query *Query, maxHits int, now time.Time) []*core.SearchResult {
	var queryTags []string
	if query.Filter != nil {
		queryTags = query.Filter.Tags
	}

	results := make([]*core.SearchResult, 0, len(scored))
	for _, c := range scored {
		score, breakdown := s.ranker.Score(c.note, c.distance, query.Text, queryTags, now)
		results = append(results, &core.SearchResult{
			Note:      c.note,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Note.Id < results[j].Note.Id
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	return results
}
