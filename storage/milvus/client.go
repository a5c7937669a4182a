package milvus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// Field names of every fragment collection.
const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldContent   = "content"
	fieldMetadata  = "metadata"
	fieldFilename  = "filename"
)

// Column limits in bytes.
const (
	maxContentLength  = 65535
	maxMetadataLength = 65535
	maxFilenameLength = 1024
)

// Client wraps the Milvus SDK client.
type Client struct {
	client *milvusclient.Client
	opts   *Options
	logger *slog.Logger
}

// New connects to Milvus.
func New(opts *Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &Client{
		client: c,
		opts:   opts,
		logger: slog.Default().With("component", "milvus", "address", opts.Address),
	}, nil
}

// Close closes the Milvus client connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// EnsureCollection creates and loads a fragment collection if it does not exist.
func (c *Client) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(name).
		WithDescription("PDF fragments").
		WithAutoID(true).
		WithField(entity.NewField().
			WithName(fieldID).
			WithDataType(entity.FieldTypeInt64).
			WithIsPrimaryKey(true).
			WithIsAutoID(true)).
		WithField(entity.NewField().
			WithName(fieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dimension))).
		WithField(entity.NewField().
			WithName(fieldContent).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxContentLength)).
		WithField(entity.NewField().
			WithName(fieldMetadata).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxMetadataLength)).
		WithField(entity.NewField().
			WithName(fieldFilename).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxFilenameLength))

	if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Cosine scores are similarities, so ScoreThreshold keeps its langchaingo meaning.
	idx := index.NewIvfFlatIndex(entity.COSINE, 128)
	createIdxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, fieldEmbedding, idx))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := createIdxTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for index creation: %w", err)
	}

	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	c.logger.Info("created collection", "collection", name, "dimension", dimension)
	return nil
}

// Insert writes rows and flushes so they are visible to the next search.
func (c *Client) Insert(ctx context.Context, collection string, rows *rowBatch) ([]int64, error) {
	columns := []column.Column{
		column.NewColumnFloatVector(fieldEmbedding, rows.dimension(), rows.embeddings),
		column.NewColumnVarChar(fieldContent, rows.contents),
		column.NewColumnVarChar(fieldMetadata, rows.metadata),
		column.NewColumnVarChar(fieldFilename, rows.filenames),
	}

	result, err := c.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(collection, columns...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert data: %w", err)
	}

	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for flush: %w", err)
	}

	ids, ok := result.IDs.(*column.ColumnInt64)
	if !ok {
		return nil, fmt.Errorf("unexpected id column type %T", result.IDs)
	}
	return ids.Data(), nil
}

// searchHit is one row returned by Search.
type searchHit struct {
	Score    float32
	Content  string
	Metadata string
}

// Search runs a vector search, optionally restricted by a Milvus filter expression.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, topK int, filter string) ([]searchHit, error) {
	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	opt := milvusclient.NewSearchOption(collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", "16").
		WithOutputFields(fieldContent, fieldMetadata)
	if filter != "" {
		opt = opt.WithFilter(filter)
	}

	results, err := c.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(results) == 0 {
		return []searchHit{}, nil
	}

	hits := make([]searchHit, results[0].ResultCount)
	for i := range hits {
		hits[i].Score = results[0].Scores[i]
	}
	for _, field := range results[0].Fields {
		col, ok := field.(*column.ColumnVarChar)
		if !ok {
			continue
		}
		for i := range hits {
			switch col.Name() {
			case fieldContent:
				hits[i].Content = col.Data()[i]
			case fieldMetadata:
				hits[i].Metadata = col.Data()[i]
			}
		}
	}
	return hits, nil
}
