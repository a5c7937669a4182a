package ingestion

import (
	"fmt"
	"io"
	"time"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
)

// BatchResult is the outcome of one IngestBatch call.
type BatchResult struct {
	// Results has one entry per valid file, in completion order.
	Results []core.FileResult
	// Rejected lists oversized files that were never processed.
	Rejected []Rejection
	// IndexName is the index every fragment of the batch was written to.
	IndexName string
}

// Summary partitions a batch's results for display.
type Summary struct {
	Succeeded   []core.FileResult
	Failed      []core.FileResult
	Rejected    []Rejection
	TotalChunks int
	// TotalTime sums the processing time of successful files.
	TotalTime time.Duration
}

// Summary computes the batch summary.
func (b *BatchResult) Summary() Summary {
	s := Summary{Rejected: b.Rejected}
	for _, r := range b.Results {
		if r.Succeeded() {
			s.Succeeded = append(s.Succeeded, r)
			s.TotalChunks += r.ChunkCount
			s.TotalTime += r.ProcessingTime
			continue
		}
		s.Failed = append(s.Failed, r)
	}
	return s
}

// Format writes the human-readable report.
func (s Summary) Format(w io.Writer) error {
	if len(s.Succeeded) > 0 {
		if _, err := fmt.Fprintf(w, "%d documents uploaded: %d chunks in %.1fs\n",
			len(s.Succeeded), s.TotalChunks, s.TotalTime.Seconds()); err != nil {
			return err
		}
		for _, r := range s.Succeeded {
			if _, err := fmt.Fprintf(w, "  ok    %s - %d chunks (%.1fs)\n", r.Filename, r.ChunkCount, r.ProcessingSeconds()); err != nil {
				return err
			}
		}
	}
	if len(s.Failed) > 0 {
		if _, err := fmt.Fprintf(w, "%d documents failed\n", len(s.Failed)); err != nil {
			return err
		}
		for _, r := range s.Failed {
			if _, err := fmt.Fprintf(w, "  error %s - %s\n", r.Filename, r.Error); err != nil {
				return err
			}
		}
	}
	if len(s.Rejected) > 0 {
		if _, err := fmt.Fprintf(w, "%d files skipped for exceeding the size limit\n", len(s.Rejected)); err != nil {
			return err
		}
		for _, r := range s.Rejected {
			if _, err := fmt.Fprintf(w, "  skip  %s\n", r); err != nil {
				return err
			}
		}
	}
	return nil
}
