package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// Store is a vectorstores.VectorStore backed by one Milvus collection.
type Store struct {
	client     *Client
	embedder   ai.Embedder
	collection string
	dimension  int
	logger     *slog.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

var _ vectorstores.VectorStore = (*Store)(nil)

// NewStore creates a store writing to the collection derived from indexName.
func NewStore(client *Client, embedder ai.Embedder, indexName string) (*Store, error) {
	if client == nil || embedder == nil {
		return nil, fmt.Errorf("%w: client and embedder are required", storage.ErrInvalidQuery)
	}
	collection, err := CollectionName(indexName)
	if err != nil {
		return nil, err
	}
	return &Store{
		client:     client,
		embedder:   embedder,
		collection: collection,
		dimension:  client.opts.Dimension,
		logger:     slog.Default().With("component", "milvus-store", "collection", collection),
		ensured:    make(map[string]bool),
	}, nil
}

// Collection returns the Milvus collection name.
func (s *Store) Collection() string {
	return s.collection
}

// AddDocuments embeds docs and inserts them in a single Milvus insert.
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := parseOptions(options...)
	collection, err := s.resolveCollection(opts)
	if err != nil {
		return nil, err
	}

	if opts.Deduplicater != nil {
		docs = slices.DeleteFunc(slices.Clone(docs), func(doc schema.Document) bool {
			return opts.Deduplicater(ctx, doc)
		})
	}
	if len(docs) == 0 {
		return []string{}, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d fragments: %w", len(texts), err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: %d texts, %d vectors", storage.ErrEmbeddingMismatch, len(docs), len(vectors))
	}

	rows, err := newRowBatch(docs, vectors)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCollection(ctx, collection, rows.dimension()); err != nil {
		return nil, err
	}

	ids, err := s.client.Insert(ctx, collection, rows)
	if err != nil {
		s.logger.Error("failed to insert fragments", "count", len(docs), "err", err)
		return nil, err
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%d", id)
	}
	s.logger.Debug("inserted fragments", "count", len(out))
	return out, nil
}

// SimilaritySearch embeds query and returns the closest fragments.
// Filters must be a Milvus boolean expression string.
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if numDocuments <= 0 {
		return nil, fmt.Errorf("%w: numDocuments must be positive", storage.ErrInvalidQuery)
	}
	opts := parseOptions(options...)
	collection, err := s.resolveCollection(opts)
	if err != nil {
		return nil, err
	}

	var filter string
	if opts.Filters != nil {
		expr, ok := opts.Filters.(string)
		if !ok {
			return nil, fmt.Errorf("%w: filters must be a milvus expression string", storage.ErrInvalidQuery)
		}
		filter = expr
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.client.Search(ctx, collection, vector, numDocuments, filter)
	if err != nil {
		return nil, err
	}
	return hitsToDocuments(hits, opts.ScoreThreshold)
}

func (s *Store) ensureCollection(ctx context.Context, collection string, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensured[collection] {
		return nil
	}
	if s.dimension > 0 && s.dimension != dimension {
		return fmt.Errorf("%w: collection %s expects dimension %d, got %d",
			storage.ErrEmbeddingMismatch, collection, s.dimension, dimension)
	}
	if err := s.client.EnsureCollection(ctx, collection, dimension); err != nil {
		return err
	}
	s.ensured[collection] = true
	return nil
}

func (s *Store) resolveCollection(opts vectorstores.Options) (string, error) {
	if opts.NameSpace == "" {
		return s.collection, nil
	}
	return CollectionName(opts.NameSpace)
}

func parseOptions(options ...vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

// CollectionName maps an index name to a valid Milvus collection name.
// Milvus allows letters, digits and underscores, starting with a letter or underscore.
func CollectionName(indexName string) (string, error) {
	if indexName == "" {
		return "", fmt.Errorf("%w: empty index name", storage.ErrInvalidQuery)
	}
	var b strings.Builder
	for _, r := range indexName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	if len(name) > 255 {
		return "", fmt.Errorf("%w: collection name for %q exceeds 255 characters", storage.ErrInvalidQuery, indexName)
	}
	return name, nil
}

// rowBatch holds column data for one insert.
type rowBatch struct {
	embeddings [][]float32
	contents   []string
	metadata   []string
	filenames  []string
}

func newRowBatch(docs []schema.Document, vectors [][]float32) (*rowBatch, error) {
	rows := &rowBatch{
		embeddings: vectors,
		contents:   make([]string, len(docs)),
		metadata:   make([]string, len(docs)),
		filenames:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		if len(vectors[i]) != len(vectors[0]) || len(vectors[0]) == 0 {
			return nil, fmt.Errorf("%w: fragment %d has dimension %d", storage.ErrEmbeddingMismatch, i, len(vectors[i]))
		}
		if len(doc.PageContent) > maxContentLength {
			return nil, fmt.Errorf("%w: fragment %d content is %d bytes", storage.ErrInvalidQuery, i, len(doc.PageContent))
		}
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata of fragment %d: %w", storage.ErrSerializationFailed, i, err)
		}
		if len(metadata) > maxMetadataLength {
			return nil, fmt.Errorf("%w: fragment %d metadata is %d bytes", storage.ErrInvalidQuery, i, len(metadata))
		}
		rows.contents[i] = doc.PageContent
		rows.metadata[i] = string(metadata)
		if filename, ok := doc.Metadata["filename"].(string); ok {
			rows.filenames[i] = truncateBytes(filename, maxFilenameLength)
		}
	}
	return rows, nil
}

func (r *rowBatch) dimension() int {
	if len(r.embeddings) == 0 {
		return 0
	}
	return len(r.embeddings[0])
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func hitsToDocuments(hits []searchHit, threshold float32) ([]schema.Document, error) {
	docs := make([]schema.Document, 0, len(hits))
	for _, hit := range hits {
		if threshold != 0 && hit.Score < threshold {
			continue
		}
		metadata := map[string]any{}
		if hit.Metadata != "" && hit.Metadata != "null" {
			if err := json.Unmarshal([]byte(hit.Metadata), &metadata); err != nil {
				return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
		}
		docs = append(docs, schema.Document{
			PageContent: hit.Content,
			Metadata:    metadata,
			Score:       hit.Score,
		})
	}
	return docs, nil
}
