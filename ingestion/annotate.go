package ingestion

import (
	"maps"
	"time"

	"github.com/tmc/langchaingo/schema"
)

// Metadata keys written on every stored fragment.
const (
	MetaFilename   = "filename"
	MetaUploadUser = "upload_user"
	MetaUploadDate = "upload_date"
	MetaFileSize   = "file_size"
	MetaIndexName  = "index_name"
)

// Provenance describes where a fragment came from.
type Provenance struct {
	Filename  string
	Uploader  string
	Timestamp time.Time
	FileSize  int64
	IndexName string
}

// Annotate returns doc with the provenance keys merged into a copy of its metadata.
// Provenance keys overwrite existing values; doc itself is not modified.
func Annotate(doc schema.Document, p Provenance) schema.Document {
	metadata := make(map[string]any, len(doc.Metadata)+5)
	maps.Copy(metadata, doc.Metadata)

	metadata[MetaFilename] = p.Filename
	metadata[MetaUploadUser] = p.Uploader
	metadata[MetaUploadDate] = p.Timestamp.Format(time.RFC3339)
	metadata[MetaFileSize] = p.FileSize
	metadata[MetaIndexName] = p.IndexName

	doc.Metadata = metadata
	return doc
}
