// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/LessGoh/Claude-QA-UI-v2/pdf"
	"github.com/LessGoh/Claude-QA-UI-v2/session"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/LessGoh/Claude-QA-UI-v2/textsplit"
	"github.com/panjf2000/ants/v2"
)

// DefaultPoolSize bounds the number of files processed at once.
const DefaultPoolSize = 3

// Coordinator fans a batch of uploads out to a bounded worker pool.
type Coordinator struct {
	indexes     session.IndexManager
	registry    storage.DocumentRegistry
	extractor   Extractor
	splitter    Splitter
	poolSize    int
	maxFileSize int64
	progress    ProgressSink
	logger      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize sets the number of concurrent ingestion tasks.
// Default is DefaultPoolSize; values below 1 are raised to 1.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		c.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithProgress sets the progress sink. Default is NoopProgress.
func WithProgress(sink ProgressSink) Option {
	return func(c *Coordinator) error {
		if sink == nil {
			sink = NoopProgress
		}
		c.progress = sink
		return nil
	}
}

// WithExtractor replaces the default PDF extractor.
func WithExtractor(extractor Extractor) Option {
	return func(c *Coordinator) error {
		if extractor != nil {
			c.extractor = extractor
		}
		return nil
	}
}

// WithSplitter replaces the default 1000/100 splitter.
func WithSplitter(splitter Splitter) Option {
	return func(c *Coordinator) error {
		if splitter != nil {
			c.splitter = splitter
		}
		return nil
	}
}

// WithMaxFileSize overrides the per-file size limit (inclusive).
// Default is core.MaxFileSize.
func WithMaxFileSize(limit int64) Option {
	return func(c *Coordinator) error {
		if limit <= 0 {
			limit = core.MaxFileSize
		}
		c.maxFileSize = limit
		return nil
	}
}

// NewCoordinator creates a Coordinator writing through indexes and recording into registry.
func NewCoordinator(indexes session.IndexManager, registry storage.DocumentRegistry, opts ...Option) (*Coordinator, error) {
	if indexes == nil {
		return nil, ErrIndexManagerRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	c := &Coordinator{
		indexes:     indexes,
		registry:    registry,
		poolSize:    DefaultPoolSize,
		maxFileSize: core.MaxFileSize,
		progress:    NoopProgress,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "ingestion")

	if c.extractor == nil {
		extractor, err := pdf.New(pdf.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.extractor = extractor
	}
	if c.splitter == nil {
		splitter, err := textsplit.New()
		if err != nil {
			return nil, err
		}
		c.splitter = splitter
	}

	return c, nil
}

// IngestBatch ingests files into the index selected by scope for uploader.
// Per-file failures are reported in the result; only batch setup errors are returned.
// Once tasks are submitted the batch runs to completion.
func (c *Coordinator) IngestBatch(ctx context.Context, files []core.UploadedFile, scope core.IndexScope, uploader string) (*BatchResult, error) {
	if uploader == "" {
		return nil, ErrUploaderRequired
	}
	indexName, err := core.IndexName(scope, uploader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexResolution, err)
	}

	valid, rejected := ValidateFiles(files, c.maxFileSize)
	result := &BatchResult{Rejected: rejected, IndexName: indexName}
	for _, r := range rejected {
		c.logger.Warn("skipping oversized file", "filename", r.Filename, "size_mb", r.SizeMB())
	}
	if len(valid) == 0 {
		return result, ErrNoValidFiles
	}

	store, err := c.indexes.VectorStore(ctx, scope, uploader)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrIndexResolution, indexName, err)
	}

	task, err := NewTask(c.extractor, c.splitter, store, c.registry, indexName, uploader, c.logger)
	if err != nil {
		return result, err
	}

	pool, err := ants.NewPool(min(c.poolSize, len(valid)))
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrTaskFault, err)
	}
	defer pool.Release()

	c.logger.Info("starting batch", "index", indexName, "files", len(valid), "rejected", len(rejected))

	results := make(chan core.FileResult, len(valid))
	for _, file := range valid {
		run := func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("ingestion task panicked", "filename", file.Name, "panic", r)
					results <- faultResult(file.Name, fmt.Errorf("%w: panic: %v", ErrTaskFault, r))
				}
			}()
			results <- task.Ingest(ctx, file)
		}
		if err := pool.Submit(run); err != nil {
			c.logger.Error("failed to submit ingestion task", "filename", file.Name, "error", err)
			results <- faultResult(file.Name, fmt.Errorf("%w: %w", ErrTaskFault, err))
		}
	}

	result.Results = make([]core.FileResult, 0, len(valid))
	for completed := 1; completed <= len(valid); completed++ {
		r := <-results
		result.Results = append(result.Results, r)
		c.progress(Progress{Completed: completed, Total: len(valid), Filename: r.Filename})
	}

	summary := result.Summary()
	c.logger.Info("batch finished", "index", indexName,
		"succeeded", len(summary.Succeeded), "failed", len(summary.Failed), "chunks", summary.TotalChunks)
	return result, nil
}

func faultResult(filename string, err error) core.FileResult {
	return core.FileResult{
		Filename: filename,
		Status:   core.StatusError,
		Error:    err.Error(),
	}
}
