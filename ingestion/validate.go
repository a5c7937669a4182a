package ingestion

import (
	"fmt"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
)

// Rejection reports a file that was not processed because of its size.
// Rejections are not errors and never appear in BatchResult.Results.
type Rejection struct {
	Filename  string
	SizeBytes int64
}

// SizeMB returns the size in mebibytes.
func (r Rejection) SizeMB() float64 {
	return float64(r.SizeBytes) / (1024 * 1024)
}

// String renders the rejection as "name (60.0MB)".
func (r Rejection) String() string {
	return fmt.Sprintf("%s (%.1fMB)", r.Filename, r.SizeMB())
}

// Err returns the rejection as an error wrapping ErrFileTooLarge.
func (r Rejection) Err() error {
	return fmt.Errorf("%w: %s", ErrFileTooLarge, r)
}

// ValidateFiles splits files into those within limit and rejections, keeping input order.
// limit is inclusive; a non-positive limit means core.MaxFileSize.
func ValidateFiles(files []core.UploadedFile, limit int64) (valid []core.UploadedFile, rejected []Rejection) {
	if limit <= 0 {
		limit = core.MaxFileSize
	}
	for _, f := range files {
		if f.SizeBytes() > limit {
			rejected = append(rejected, Rejection{Filename: f.Name, SizeBytes: f.SizeBytes()})
			continue
		}
		valid = append(valid, f)
	}
	return valid, rejected
}
