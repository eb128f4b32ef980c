package mock

import (
	"context"
	"strings"
	"sync/atomic"
)

// Extractor is a test double for ai.Extractor. The default behavior is
// a trimmed passthrough of the source; tests needing failures or richer
// transformations inject an ExtractFunc.
type Extractor struct {
	// ExtractFunc overrides Extract when set.
	ExtractFunc func(ctx context.Context, source string) (string, error)

	calls atomic.Int64
}

func (m *Extractor) Extract(ctx context.Context, source string) (string, error) {
	m.calls.Add(1)
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, source)
	}
	return strings.TrimSpace(source), nil
}

// Calls returns how many times Extract was invoked.
func (m *Extractor) Calls() int64 {
	return m.calls.Load()
}
