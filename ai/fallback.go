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

package ai

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/go-crypt/x/blake2b"
)

// FallbackModelVersion tags embeddings produced by the deterministic
// fallback so they can be found and re-embedded once the real provider
// recovers.
const FallbackModelVersion = "fallback-blake2b-v1"

const defaultFallbackDimensions = 384

// FallbackEmbedder produces deterministic pseudo-embeddings derived from
// a blake2b digest of the input text. The vectors carry no semantic
// meaning; they exist so ingestion can complete during a provider outage
// without blocking, with the degraded quality made explicit through
// FallbackModelVersion. Identical text always yields the identical
// vector.
type FallbackEmbedder struct {
	dimensions int
}

var _ Embedder = (*FallbackEmbedder)(nil)

// FallbackOption configures a FallbackEmbedder.
type FallbackOption func(*FallbackEmbedder)

// WithFallbackDimensions sets the produced vector width. Default 384.
func WithFallbackDimensions(dim int) FallbackOption {
	return func(f *FallbackEmbedder) {
		if dim > 0 {
			f.dimensions = dim
		}
	}
}

// NewFallbackEmbedder creates a deterministic fallback embedder.
func NewFallbackEmbedder(opts ...FallbackOption) *FallbackEmbedder {
	f := &FallbackEmbedder{dimensions: defaultFallbackDimensions}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ModelVersion returns FallbackModelVersion.
func (f *FallbackEmbedder) ModelVersion() string {
	return FallbackModelVersion
}

// EmbedText generates a deterministic unit vector for the text.
func (f *FallbackEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return f.vectorFor(text), nil
}

// EmbedTexts generates deterministic unit vectors for each text.
func (f *FallbackEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.vectorFor(text)
	}
	return vectors, nil
}

// vectorFor expands the blake2b digest of the text into a normalized
// vector using a linear congruential generator seeded from the digest.
func (f *FallbackEmbedder) vectorFor(text string) []float32 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	state := binary.LittleEndian.Uint64(h.Sum(nil))

	vector := make([]float32, f.dimensions)
	var sumSquares float64
	for i := range vector {
		state = state*6364136223846793005 + 1442695040888963407
		// Map the top bits to [-1, 1).
		v := float64(int64(state>>11))/float64(1<<52) - 1.0
		vector[i] = float32(v)
		sumSquares += v * v
	}

	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
