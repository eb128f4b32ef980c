package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
)

const (
	defaultVersion    = "mock-embedder-v1"
	defaultDimensions = 384
)

// Embedder is a test double for ai.Embedder. Without injected
// functions it produces deterministic unit vectors derived from the
// text, so identical inputs always embed identically across runs.
type Embedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Version reported by ModelVersion. Defaults to "mock-embedder-v1".
	Version string

	// Dimensions of the default vectors. Defaults to 384.
	Dimensions int

	calls atomic.Int64
}

func (m *Embedder) ModelVersion() string {
	if m.Version == "" {
		return defaultVersion
	}
	return m.Version
}

func (m *Embedder) dims() int {
	if m.Dimensions <= 0 {
		return defaultDimensions
	}
	return m.Dimensions
}

func (m *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return deterministicVector(text, m.dims()), nil
}

func (m *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.dims())
	}
	return vectors, nil
}

// Calls returns how many embed calls were made, counting batches as one.
func (m *Embedder) Calls() int64 {
	return m.calls.Load()
}

// deterministicVector expands an FNV-1a hash of the text into a unit
// vector with an xorshift generator.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 1
	}

	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float64(int64(state%2001)-1000) / 1000.0
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
