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
	"math"
	"slices"
	"time"

	"github.com/poiesic/lorekeep/core"
)

// Weights blend the ranking signals. The defaults favor semantic
// similarity heavily; the remaining signals break near-ties.
type Weights struct {
	Semantic float64
	Metadata float64
	Quality  float64
	Type     float64
}

// DefaultWeights returns the standard signal blend.
func DefaultWeights() Weights {
	return Weights{
		Semantic: 0.70,
		Metadata: 0.20,
		Quality:  0.10,
		Type:     0.05,
	}
}

const (
	// Default recency decay. A note loses at most the maximum penalty,
	// approaching it with a 30-day half-life on its last modification.
	defaultDecayHalfLife   = 30 * 24 * time.Hour
	defaultMaxDecayPenalty = 0.1
)

// typeSignal ranks note types by refinement. Synthesized insights
// outrank raw captures.
func typeSignal(t core.NoteType) float64 {
	switch t {
	case core.NoteTypeInsight:
		return 1.0
	case core.NoteTypePermanent:
		return 0.9
	case core.NoteTypeLiterature:
		return 0.7
	case core.NoteTypeAgent:
		return 0.5
	case core.NoteTypeFleeting:
		return 0.3
	default:
		return 0
	}
}

// Ranker scores candidate notes against a query. Scoring is a pure
// function of the note, the distance, and the query; identical inputs
// always produce identical scores, so result order is deterministic.
type Ranker struct {
	weights    Weights
	halfLife   time.Duration
	maxPenalty float64
	now        func() time.Time
}

// NewRanker creates a ranker with the given weights and default decay.
func NewRanker(weights Weights) *Ranker {
	return &Ranker{
		weights:    weights,
		halfLife:   defaultDecayHalfLife,
		maxPenalty: defaultMaxDecayPenalty,
		now:        time.Now,
	}
}

// Score computes the blended relevance score and its per-signal
// breakdown. The breakdown always accompanies the score; ranking
// decisions must stay explainable after the fact. The caller supplies
// now so every candidate in one ranking pass decays against the same
// instant.
func (r *Ranker) Score(note *core.Note, distance float64, queryText string, queryTags []string, now time.Time) (float64, core.ScoreBreakdown) {
	semantic := 1 - distance
	if semantic < 0 {
		semantic = 0
	}
	if semantic > 1 {
		semantic = 1
	}

	breakdown := core.ScoreBreakdown{
		Semantic: r.weights.Semantic * semantic,
		Metadata: r.weights.Metadata * metadataSignal(note, queryText, queryTags),
		Quality:  r.weights.Quality * note.Quality,
		Type:     r.weights.Type * typeSignal(note.Type),
		Decay:    r.decayPenalty(now.Sub(note.Version.ModifiedAt)),
	}
	score := breakdown.Semantic + breakdown.Metadata + breakdown.Quality + breakdown.Type - breakdown.Decay
	return score, breakdown
}

// metadataSignal blends tag overlap with a verbatim-match bonus. A note
// containing every content word of the query is a strong signal even
// when the vectors disagree.
func metadataSignal(note *core.Note, queryText string, queryTags []string) float64 {
	signal := 0.0
	if len(queryTags) > 0 {
		matched := 0
		for _, tag := range queryTags {
			if slices.Contains(note.Tags, tag) {
				matched++
			}
		}
		signal = float64(matched) / float64(len(queryTags))
	}
	if queryText != "" && containsAllQueryWords(note.Contents, queryText) {
		signal += 0.5
	}
	if signal > 1 {
		signal = 1
	}
	return signal
}

// ScoreCeiling returns the highest score any note at or beyond the
// given distance could reach: full metadata, quality, and type signals,
// no decay. The planner uses it to prove unseen candidates cannot enter
// the top hits.
func (r *Ranker) ScoreCeiling(distance float64) float64 {
	semantic := 1 - distance
	if semantic < 0 {
		semantic = 0
	}
	if semantic > 1 {
		semantic = 1
	}
	return r.weights.Semantic*semantic + r.weights.Metadata + r.weights.Quality + r.weights.Type
}

// decayPenalty grows with the note's age since last modification,
// bounded so staleness can demote but never bury a strong match.
func (r *Ranker) decayPenalty(age time.Duration) float64 {
	if age <= 0 {
		return 0
	}
	halfLives := float64(age) / float64(r.halfLife)
	return r.maxPenalty * (1 - math.Pow(0.5, halfLives))
}
