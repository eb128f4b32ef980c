package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Adapter defaults. All of them are tunable via options; none of the
// values below are calibrated beyond operational experience.
const (
	defaultMaxAttempts      = 5
	defaultBaseDelay        = 500 * time.Millisecond
	defaultMaxDelay         = 30 * time.Second
	defaultCallTimeout      = 30 * time.Second
	defaultFailureThreshold = 3
)

// FailoverEmbedder wraps a primary embedding backend with retry, health
// tracking, and an optional deterministic fallback. It is the single
// embedding entry point for ingestion and query resolution.
//
// Each call carries its own timeout, independent of the retry budget.
// Transient failures are retried with exponential backoff and jitter;
// once the retry budget is exhausted the call either fails with
// ErrProviderUnavailable or, when a fallback is configured, is served
// by the fallback under its own distinguishing model version so the
// resulting embeddings can be identified and re-embedded later.
//
// The adapter is stateless aside from its health counters.
type FailoverEmbedder struct {
	primary  Embedder
	fallback Embedder

	maxAttempts      int
	baseDelay        time.Duration
	maxDelay         time.Duration
	callTimeout      time.Duration
	failureThreshold int

	mu          sync.Mutex
	consecutive int  // Consecutive primary failures
	degraded    bool // Primary bypassed until ResetHealth

	logger *slog.Logger
}

// AdapterOption configures a FailoverEmbedder.
type AdapterOption func(*FailoverEmbedder)

// WithFallback sets the fallback embedder used when the primary is
// degraded or a call exhausts its retry budget. The fallback's model
// version must differ from the primary's.
func WithFallback(fallback Embedder) AdapterOption {
	return func(f *FailoverEmbedder) {
		f.fallback = fallback
	}
}

// WithMaxAttempts sets the retry budget per call. Default 5.
func WithMaxAttempts(n int) AdapterOption {
	return func(f *FailoverEmbedder) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoff sets the base and maximum delay for exponential backoff.
// Defaults: 500ms base, 30s cap.
func WithBackoff(base, max time.Duration) AdapterOption {
	return func(f *FailoverEmbedder) {
		if base > 0 {
			f.baseDelay = base
		}
		if max > 0 {
			f.maxDelay = max
		}
	}
}

// WithCallTimeout bounds each individual provider call. Default 30s.
func WithCallTimeout(d time.Duration) AdapterOption {
	return func(f *FailoverEmbedder) {
		if d > 0 {
			f.callTimeout = d
		}
	}
}

// WithFailureThreshold sets how many consecutive failed calls mark the
// primary degraded. Default 3.
func WithFailureThreshold(n int) AdapterOption {
	return func(f *FailoverEmbedder) {
		if n > 0 {
			f.failureThreshold = n
		}
	}
}

// WithAdapterLogger sets a custom logger. Default is slog.Default().
func WithAdapterLogger(logger *slog.Logger) AdapterOption {
	return func(f *FailoverEmbedder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFailoverEmbedder creates an adapter around the primary embedder.
func NewFailoverEmbedder(primary Embedder, opts ...AdapterOption) (*FailoverEmbedder, error) {
	if primary == nil {
		return nil, ErrEmbedderRequired
	}

	f := &FailoverEmbedder{
		primary:          primary,
		maxAttempts:      defaultMaxAttempts,
		baseDelay:        defaultBaseDelay,
		maxDelay:         defaultMaxDelay,
		callTimeout:      defaultCallTimeout,
		failureThreshold: defaultFailureThreshold,
		logger:           slog.Default().With("component", "embedding-adapter"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// ModelVersion reports the model version that will serve the next call:
// the primary's while healthy, the fallback's while degraded.
func (f *FailoverEmbedder) ModelVersion() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded && f.fallback != nil {
		return f.fallback.ModelVersion()
	}
	return f.primary.ModelVersion()
}

// PrimaryModelVersion reports the healthy-path model version regardless
// of current health.
func (f *FailoverEmbedder) PrimaryModelVersion() string {
	return f.primary.ModelVersion()
}

// Degraded reports whether calls are currently routed to the fallback.
func (f *FailoverEmbedder) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

// ResetHealth clears the failure counters, restoring the primary path.
// Called by operators after a provider outage resolves.
func (f *FailoverEmbedder) ResetHealth() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consecutive = 0
	f.degraded = false
}

// Embed generates an embedding for a single text, returning the vector
// and the model version that produced it.
func (f *FailoverEmbedder) Embed(ctx context.Context, text string) ([]float32, string, error) {
	vectors, version, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, "", err
	}
	return vectors[0], version, nil
}

// EmbedBatch generates embeddings for multiple texts, returning the
// vectors in input order and the model version that produced them.
// All vectors in one batch come from the same backend.
func (f *FailoverEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, string, error) {
	if len(texts) == 0 {
		return nil, "", ErrEmptyBatch
	}

	if f.Degraded() {
		return f.embedFallback(ctx, texts)
	}

	vectors, err := f.embedPrimary(ctx, texts)
	if err == nil {
		f.recordSuccess()
		return vectors, f.primary.ModelVersion(), nil
	}

	f.recordFailure()
	f.logger.Warn("primary embedding provider failed", "attempts", f.maxAttempts, "err", err)

	if f.fallback != nil {
		return f.embedFallback(ctx, texts)
	}
	return nil, "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

// embedPrimary runs the primary call under the retry/backoff policy.
func (f *FailoverEmbedder) embedPrimary(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vectors, err := f.callPrimary(ctx, texts)
		if err == nil {
			if attempt > 1 {
				f.logger.Debug("embedding succeeded after retry", "attempt", attempt)
			}
			return vectors, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) {
			return nil, err
		}

		if attempt == f.maxAttempts {
			break
		}

		timer := time.NewTimer(f.backoffDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// callPrimary performs a single provider call under the call timeout.
func (f *FailoverEmbedder) callPrimary(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	vectors, err := f.primary.EmbedTexts(callCtx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(vectors))
	}
	return vectors, nil
}

func (f *FailoverEmbedder) embedFallback(ctx context.Context, texts []string) ([][]float32, string, error) {
	vectors, err := f.fallback.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fallback: %w", ErrProviderUnavailable, err)
	}
	return vectors, f.fallback.ModelVersion(), nil
}

// backoffDelay computes the exponential backoff with jitter for the
// given attempt: half the nominal delay fixed, half randomized.
func (f *FailoverEmbedder) backoffDelay(attempt int) time.Duration {
	delay := f.baseDelay
	for i := 1; i < attempt && delay < f.maxDelay; i++ {
		delay *= 2
	}
	if delay > f.maxDelay {
		delay = f.maxDelay
	}
	half := delay / 2
	return half + rand.N(half+1)
}

func (f *FailoverEmbedder) recordSuccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consecutive = 0
}

func (f *FailoverEmbedder) recordFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consecutive++
	if f.consecutive >= f.failureThreshold && !f.degraded {
		f.degraded = true
		f.logger.Warn("embedding provider marked degraded",
			"consecutiveFailures", f.consecutive,
			"fallbackConfigured", f.fallback != nil)
	}
}
