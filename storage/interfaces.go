package storage

import (
	"context"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
)

// DocumentRegistry records one provenance entry per successfully ingested file.
// It is an append-only sink; records are never updated or deleted.
// Implementations must be thread-safe and support concurrent access.
type DocumentRegistry interface {
	// AddDocument validates and appends a record.
	// A zero ID is replaced by one drawn from the registry's sequence,
	// and the assigned ID is written back into record.
	AddDocument(ctx context.Context, record *core.DocumentRecord) error

	// ListDocuments returns the records written to indexName, oldest first.
	// Returns an empty slice when the index has no records.
	ListDocuments(ctx context.Context, indexName string) ([]*core.DocumentRecord, error)

	// Close releases resources held by the registry.
	Close() error
}
