package textsplit

import "errors"

var (
	// ErrInvalidChunkSize indicates a chunk size below one rune.
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")

	// ErrInvalidChunkOverlap indicates an overlap that is negative or not smaller than the chunk size.
	ErrInvalidChunkOverlap = errors.New("chunk overlap must be in [0, chunk size)")
)
