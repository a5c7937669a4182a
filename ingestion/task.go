package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// Extractor turns raw PDF bytes into one document per non-blank page.
type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]schema.Document, error)
}

// Splitter turns pages into overlapping fragments, preserving page metadata.
type Splitter interface {
	SplitPages(pages []schema.Document) ([]schema.Document, error)
}

// Task ingests single files into one resolved index.
// A Task is shared by all workers of a batch and holds no per-file state.
type Task struct {
	extractor Extractor
	splitter  Splitter
	store     vectorstores.VectorStore
	registry  storage.DocumentRegistry
	indexName string
	uploader  string
	now       func() time.Time
	logger    *slog.Logger
}

// NewTask creates a Task bound to store and indexName.
func NewTask(
	extractor Extractor,
	splitter Splitter,
	store vectorstores.VectorStore,
	registry storage.DocumentRegistry,
	indexName, uploader string,
	logger *slog.Logger,
) (*Task, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if uploader == "" {
		return nil, ErrUploaderRequired
	}
	if indexName == "" {
		return nil, core.ErrEmptyIndexName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{
		extractor: extractor,
		splitter:  splitter,
		store:     store,
		registry:  registry,
		indexName: indexName,
		uploader:  uploader,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With("index", indexName),
	}, nil
}

// Ingest runs extract, split, annotate, store and register for one file.
// It always returns exactly one result; failures are reported in the result, never panicked.
func (t *Task) Ingest(ctx context.Context, file core.UploadedFile) core.FileResult {
	start := time.Now()
	logger := t.logger.With("filename", file.Name)

	fail := func(err error) core.FileResult {
		logger.Warn("file ingestion failed", "error", err)
		return core.FileResult{
			Filename:       file.Name,
			Status:         core.StatusError,
			Error:          err.Error(),
			ProcessingTime: time.Since(start),
		}
	}

	pages, err := t.extractor.Extract(ctx, file.Content)
	if err != nil {
		return fail(err)
	}

	fragments, err := t.splitter.SplitPages(pages)
	if err != nil {
		return fail(err)
	}
	if len(fragments) == 0 {
		return fail(ErrNoFragments)
	}

	uploadedAt := t.now()
	provenance := Provenance{
		Filename:  file.Name,
		Uploader:  t.uploader,
		Timestamp: uploadedAt,
		FileSize:  file.SizeBytes(),
		IndexName: t.indexName,
	}
	for i := range fragments {
		fragments[i] = Annotate(fragments[i], provenance)
	}

	if _, err := t.store.AddDocuments(ctx, fragments); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrStoreWrite, err))
	}

	record := &core.DocumentRecord{
		Filename:      file.Name,
		Uploader:      t.uploader,
		UploadedAt:    uploadedAt,
		FileSizeBytes: file.SizeBytes(),
		ChunkCount:    len(fragments),
		IndexName:     t.indexName,
		Status:        core.StatusSuccess,
	}
	if err := t.registry.AddDocument(ctx, record); err != nil {
		// Fragments are already stored; the registry entry is best effort.
		logger.Error("failed to register document", "error", err)
	}

	elapsed := time.Since(start)
	logger.Debug("file ingested", "chunks", len(fragments), "elapsed", elapsed)
	return core.FileResult{
		Filename:       file.Name,
		Status:         core.StatusSuccess,
		ChunkCount:     len(fragments),
		ProcessingTime: elapsed,
	}
}
