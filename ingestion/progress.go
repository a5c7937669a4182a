package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress is reported once per finished file, in completion order.
type Progress struct {
	Completed int
	Total     int
	Filename  string
}

// Fraction returns Completed/Total, or 1 for an empty batch.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// ProgressSink receives progress updates from the coordinator goroutine.
// Calls are never concurrent within one batch.
type ProgressSink func(Progress)

// NoopProgress discards progress updates.
func NoopProgress(Progress) {}

// ProgressWriter renders batch progress as a single rewritten terminal line.
type ProgressWriter struct {
	writer    io.Writer
	startTime time.Time
	started   bool
	last      Progress
	mu        sync.Mutex
}

// NewProgressWriter creates a ProgressWriter writing to w (typically os.Stderr).
func NewProgressWriter(w io.Writer) *ProgressWriter {
	return &ProgressWriter{writer: w}
}

// Report is a ProgressSink.
func (p *ProgressWriter) Report(update Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.startTime = time.Now()
		p.started = true
	}
	p.last = update

	fmt.Fprintf(p.writer, "\rProcessing: %d/%d (%.1f%%) - %s",
		update.Completed, update.Total, update.Fraction()*100.0, update.Filename)
}

// Finish ends the progress line.
func (p *ProgressWriter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	fmt.Fprintln(p.writer)
}

// Last returns the most recent update.
func (p *ProgressWriter) Last() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Elapsed returns the time since the first update.
func (p *ProgressWriter) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}
