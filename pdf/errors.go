package pdf

import "errors"

var (
	// ErrExtraction indicates the file could not be turned into page text.
	ErrExtraction = errors.New("pdf extraction failed")

	// ErrInvalidOption indicates a bad Extractor option.
	ErrInvalidOption = errors.New("invalid extractor option")
)
