package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// VectorStore is an embedded vector index over one BadgerDB backend.
// Each store instance is bound to a single index name; the NameSpace option
// redirects a call to another index on the same backend.
type VectorStore struct {
	backend   *Backend
	embedder  ai.Embedder
	indexName string
	logger    *slog.Logger
}

var _ vectorstores.VectorStore = (*VectorStore)(nil)

// StoreOption configures a VectorStore.
type StoreOption func(*VectorStore) error

// WithStoreLogger sets the logger used by the store.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *VectorStore) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", storage.ErrInvalidQuery)
		}
		s.logger = logger
		return nil
	}
}

// NewVectorStore creates a store for indexName.
func NewVectorStore(backend *Backend, embedder ai.Embedder, indexName string, opts ...StoreOption) (*VectorStore, error) {
	if backend == nil || embedder == nil || indexName == "" {
		return nil, fmt.Errorf("%w: backend, embedder and index name are required", storage.ErrInvalidQuery)
	}

	s := &VectorStore{
		backend:   backend,
		embedder:  embedder,
		indexName: indexName,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "badger-vectorstore", "index", indexName)
	return s, nil
}

// IndexName returns the index the store writes to by default.
func (s *VectorStore) IndexName() string {
	return s.indexName
}

// AddDocuments embeds and stores docs, returning one generated ID per stored document.
// Every document is embedded before anything is written. Writes go through a
// badger.WriteBatch, so a failure while writing can leave earlier documents stored.
func (s *VectorStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := s.parseOptions(options...)
	indexName := s.resolveIndex(opts)

	if opts.Deduplicater != nil {
		docs = slices.DeleteFunc(slices.Clone(docs), func(doc schema.Document) bool {
			return opts.Deduplicater(ctx, doc)
		})
	}
	if len(docs) == 0 {
		return []string{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
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

	ids := make([]string, len(docs))
	err = s.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for i, doc := range docs {
			metadata, err := json.Marshal(doc.Metadata)
			if err != nil {
				return fmt.Errorf("%w: metadata of fragment %d: %w", storage.ErrSerializationFailed, i, err)
			}
			fragment := &storage.StoredFragment{
				ID:        uuid.NewString(),
				IndexName: indexName,
				Content:   doc.PageContent,
				Metadata:  string(metadata),
				Vector:    vectors[i],
			}
			if err := wb.Set(makeFragmentKey(indexName, fragment.ID), storage.MarshalFragment(fragment)); err != nil {
				return err
			}
			ids[i] = fragment.ID
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to store fragments", "count", len(docs), "err", err)
		return nil, err
	}

	s.logger.Debug("stored fragments", "count", len(ids))
	return ids, nil
}

// SimilaritySearch returns up to numDocuments fragments ordered by cosine similarity to query.
// A non-zero ScoreThreshold drops weaker matches; Filters, when a map[string]any, keeps only
// fragments whose metadata holds every listed key with an equal value.
func (s *VectorStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if numDocuments <= 0 {
		return nil, fmt.Errorf("%w: numDocuments must be positive", storage.ErrInvalidQuery)
	}
	opts := s.parseOptions(options...)
	indexName := s.resolveIndex(opts)

	filters, ok := opts.Filters.(map[string]any)
	if opts.Filters != nil && !ok {
		return nil, fmt.Errorf("%w: filters must be map[string]any", storage.ErrInvalidQuery)
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var results []schema.Document
	err = s.scan(ctx, indexName, func(fragment *storage.StoredFragment, metadata map[string]any) {
		if !matchesFilters(metadata, filters) {
			return
		}
		score := cosineSimilarity(queryVector, fragment.Vector)
		if opts.ScoreThreshold != 0 && score < opts.ScoreThreshold {
			return
		}
		results = append(results, schema.Document{
			PageContent: fragment.Content,
			Metadata:    metadata,
			Score:       score,
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b schema.Document) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > numDocuments {
		results = results[:numDocuments]
	}
	return results, nil
}

// CountFragments returns the number of fragments stored in the store's index.
func (s *VectorStore) CountFragments(ctx context.Context) (int, error) {
	count := 0
	err := s.scan(ctx, s.indexName, func(*storage.StoredFragment, map[string]any) {
		count++
	})
	return count, err
}

// scan decodes every fragment of indexName and hands it to fn.
func (s *VectorStore) scan(ctx context.Context, indexName string, fn func(*storage.StoredFragment, map[string]any)) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialFragmentKey(indexName)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var fragment *storage.StoredFragment
			err := iter.Item().Value(func(val []byte) error {
				var err error
				fragment, err = storage.UnmarshalFragment(val)
				return err
			})
			if err != nil {
				return err
			}
			if fragment.IndexName != indexName {
				continue
			}

			metadata := map[string]any{}
			if fragment.Metadata != "" && fragment.Metadata != "null" {
				if err := json.Unmarshal([]byte(fragment.Metadata), &metadata); err != nil {
					return fmt.Errorf("%w: fragment %s metadata: %w", storage.ErrSerializationFailed, fragment.ID, err)
				}
			}
			fn(fragment, metadata)
		}
		return nil
	}, false)
}

func (s *VectorStore) parseOptions(options ...vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

func (s *VectorStore) resolveIndex(opts vectorstores.Options) string {
	if opts.NameSpace != "" {
		return opts.NameSpace
	}
	return s.indexName
}

// matchesFilters compares through fmt so JSON-decoded numbers match ints.
func matchesFilters(metadata, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length are compared over their common prefix.
func cosineSimilarity(a, b []float32) float32 {
	minLen := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
