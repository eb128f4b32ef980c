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

package ingest

import (
	"strings"
	"unicode/utf8"
)

// Assessment weights and thresholds. The blend is a heuristic; the
// weights are exposed so operators can tune them rather than trusting
// the defaults.
const (
	defaultCompletenessWeight = 0.5
	defaultMetadataWeight     = 0.2
	defaultLengthWeight       = 0.3

	// Word count at which the length signal saturates.
	defaultFullLengthWords = 40
)

// Assessor computes the confidence score that gates auto-finalization.
// The score is a pure function of its inputs: identical source, text,
// and metadata always yield the identical score.
type Assessor struct {
	completenessWeight float64
	metadataWeight     float64
	lengthWeight       float64
	fullLengthWords    int
}

// AssessorOption configures an Assessor.
type AssessorOption func(*Assessor)

// WithAssessmentWeights sets the signal weights. Weights are used as
// given; callers who want a [0,1] score should keep them summing to 1.
func WithAssessmentWeights(completeness, metadata, length float64) AssessorOption {
	return func(a *Assessor) {
		a.completenessWeight = completeness
		a.metadataWeight = metadata
		a.lengthWeight = length
	}
}

// WithFullLengthWords sets the word count at which the length signal
// saturates. Default 40.
func WithFullLengthWords(n int) AssessorOption {
	return func(a *Assessor) {
		if n > 0 {
			a.fullLengthWords = n
		}
	}
}

// NewAssessor creates an assessor with default weights.
func NewAssessor(opts ...AssessorOption) *Assessor {
	a := &Assessor{
		completenessWeight: defaultCompletenessWeight,
		metadataWeight:     defaultMetadataWeight,
		lengthWeight:       defaultLengthWeight,
		fullLengthWords:    defaultFullLengthWords,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess computes the confidence score in [0,1] from three signals:
// extraction completeness (how much of the source survived extraction),
// metadata presence (tags supplied with the submission), and a length
// threshold (very short extractions are suspect).
func (a *Assessor) Assess(source, extracted string, tags []string) float64 {
	// Garbage extractions score zero outright; counting their bytes or
	// words toward any signal would reward the failure.
	if !utf8.ValidString(extracted) || strings.TrimSpace(extracted) == "" {
		return 0
	}

	score := a.completenessWeight * completeness(source, extracted)

	if len(tags) > 0 {
		score += a.metadataWeight
	}

	words := len(strings.Fields(extracted))
	lengthSignal := float64(words) / float64(a.fullLengthWords)
	if lengthSignal > 1 {
		lengthSignal = 1
	}
	score += a.lengthWeight * lengthSignal

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// completeness estimates how much of the source material survived
// extraction. The source is measured by its visible text, not its raw
// bytes, so markup-heavy documents are not penalized for shedding tags;
// the ratio is further forgiving below 1 and clamped above.
func completeness(source, extracted string) float64 {
	srcLen := len(strings.TrimSpace(stripMarkup(source)))
	if srcLen == 0 {
		// Nothing to compare against; trust the extraction.
		return 1
	}
	ratio := float64(len(extracted)) / float64(srcLen)
	if ratio > 1 {
		ratio = 1
	}
	// Losing up to half the visible text to boilerplate removal is normal.
	scaled := ratio * 2
	if scaled > 1 {
		scaled = 1
	}
	return scaled
}

// stripMarkup drops everything between angle brackets so markup-heavy
// sources are measured by the text a reader would see.
func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
