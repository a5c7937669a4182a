package textsplit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Default window, in runes.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// ChunkIndexKey is the metadata key SplitPages sets on every fragment.
const ChunkIndexKey = "chunk_index"

// Splitter is immutable after New and safe for concurrent use.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

var _ textsplitter.TextSplitter = (*Splitter)(nil)

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum fragment length in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithChunkOverlap sets how many runes each fragment repeats from the previous one.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.chunkOverlap = overlap
	}
}

// New creates a Splitter with the default 1000/100 window unless overridden.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chunkSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, s.chunkSize)
	}
	if s.chunkOverlap < 0 || s.chunkOverlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: got %d with size %d", ErrInvalidChunkOverlap, s.chunkOverlap, s.chunkSize)
	}
	return s, nil
}

// ChunkSize returns the maximum fragment length in runes.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// ChunkOverlap returns the overlap in runes.
func (s *Splitter) ChunkOverlap() int {
	return s.chunkOverlap
}

// SplitText splits text into fragments of at most ChunkSize runes.
// Empty input yields no fragments.
func (s *Splitter) SplitText(text string) ([]string, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{}, nil
	}
	if len(runes) <= s.chunkSize {
		return []string{text}, nil
	}

	var fragments []string
	start := 0
	for {
		end := start + s.chunkSize
		if end >= len(runes) {
			fragments = append(fragments, string(runes[start:]))
			return fragments, nil
		}
		// The cut must leave more than the overlap behind, or the next window would not move.
		cut := findCut(runes, start, start+s.chunkOverlap+1, end)
		fragments = append(fragments, string(runes[start:cut]))
		start = cut - s.chunkOverlap
	}
}

// SplitPages splits every page and returns the fragments in page order.
// Each fragment gets its own copy of the page metadata plus ChunkIndexKey,
// numbered from zero across all pages.
func (s *Splitter) SplitPages(pages []schema.Document) ([]schema.Document, error) {
	fragments, err := textsplitter.SplitDocuments(s, pages)
	if err != nil {
		return nil, err
	}
	for i := range fragments {
		if fragments[i].Metadata == nil {
			fragments[i].Metadata = map[string]any{}
		}
		fragments[i].Metadata[ChunkIndexKey] = i
	}
	return fragments, nil
}

// Reconstruct reverses SplitText by dropping the overlap prefix of every fragment but the first.
func Reconstruct(fragments []string, overlap int) string {
	var b strings.Builder
	for i, fragment := range fragments {
		if i == 0 {
			b.WriteString(fragment)
			continue
		}
		runes := []rune(fragment)
		if overlap < len(runes) {
			b.WriteString(string(runes[overlap:]))
		}
	}
	return b.String()
}

// findCut returns the exclusive end of the fragment starting at start.
// Candidates lie in [lo, hi]; hi is a hard cut.
func findCut(runes []rune, start, lo, hi int) int {
	if lo > hi {
		return hi
	}
	if cut := lastCut(runes, start, lo, hi, isParagraphBreak); cut > 0 {
		return cut
	}
	if cut := lastCut(runes, start, lo, hi, isSentenceEnd); cut > 0 {
		return cut
	}
	if cut := lastCut(runes, start, lo, hi, isWhitespace); cut > 0 {
		return cut
	}
	return hi
}

// lastCut scans backwards for the largest p in [lo, hi] where match holds for runes[start:p].
func lastCut(runes []rune, start, lo, hi int, match func(runes []rune, start, p int) bool) int {
	for p := hi; p >= lo; p-- {
		if match(runes, start, p) {
			return p
		}
	}
	return 0
}

func isParagraphBreak(runes []rune, start, p int) bool {
	return p-2 >= start && runes[p-2] == '\n' && runes[p-1] == '\n'
}

func isSentenceEnd(runes []rune, start, p int) bool {
	if p-2 < start || !unicode.IsSpace(runes[p-1]) {
		return false
	}
	switch runes[p-2] {
	case '.', '!', '?':
		return true
	}
	return false
}

func isWhitespace(runes []rune, start, p int) bool {
	return p-1 >= start && unicode.IsSpace(runes[p-1])
}
