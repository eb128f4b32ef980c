package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports migration progress to a writer every
// reportInterval notes. Safe to share between worker goroutines.
// Updates arriving before Start are dropped.
type ProgressTracker struct {
	mu       sync.Mutex
	out      io.Writer
	total    int
	interval int

	done     int
	lastEmit int
	began    time.Time
}

// NewProgressTracker writes progress lines for total notes to out,
// one line per reportInterval notes processed.
func NewProgressTracker(out io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		out:      out,
		total:    total,
		interval: reportInterval,
	}
}

// Start resets the counters and stamps the start time.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.began = time.Now()
	p.done = 0
	p.lastEmit = 0
}

// Update sets the absolute number of notes processed.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance(done)
}

// Increment adds delta to the number of notes processed.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance(p.done + delta)
}

// Finish forces a final progress line at 100% and terminates it.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.began.IsZero() {
		return
	}
	p.done = p.total
	p.emit()
	fmt.Fprintln(p.out)
}

// Elapsed returns the time since Start, or zero if never started.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.began.IsZero() {
		return 0
	}
	return time.Since(p.began)
}

// advance clamps the count to total and emits a line once a full
// interval has passed since the last one. Caller holds the lock.
func (p *ProgressTracker) advance(done int) {
	if p.began.IsZero() {
		return
	}
	p.done = min(done, p.total)
	if p.done-p.lastEmit < p.interval {
		return
	}
	p.lastEmit = p.done
	p.emit()
}

func (p *ProgressTracker) emit() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100.0
	}
	rate := float64(p.done) / time.Since(p.began).Seconds()

	fmt.Fprintf(p.out, "\rreembedded %d/%d (%.1f%%), %.1f notes/s",
		p.done, p.total, pct, rate)
}
