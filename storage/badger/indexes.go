package badger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/tmc/langchaingo/vectorstores"
)

// Indexes hands out embedded vector stores keyed by index scope and owner.
// Stores are created on first use and reused afterwards.
type Indexes struct {
	backend  *Backend
	embedder ai.Embedder
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[string]*VectorStore
}

// NewIndexes creates an index manager over backend.
func NewIndexes(backend *Backend, embedder ai.Embedder) *Indexes {
	return &Indexes{
		backend:  backend,
		embedder: embedder,
		logger:   slog.Default().With("component", "badger-indexes"),
		stores:   make(map[string]*VectorStore),
	}
}

// VectorStore resolves scope and owner to an index name and returns its store.
func (ix *Indexes) VectorStore(ctx context.Context, scope core.IndexScope, owner string) (vectorstores.VectorStore, error) {
	return ix.Store(ctx, scope, owner)
}

// Store is VectorStore returning the concrete type.
func (ix *Indexes) Store(ctx context.Context, scope core.IndexScope, owner string) (*VectorStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := core.IndexName(scope, owner)
	if err != nil {
		return nil, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if store, ok := ix.stores[name]; ok {
		return store, nil
	}
	store, err := NewVectorStore(ix.backend, ix.embedder, name)
	if err != nil {
		return nil, err
	}
	ix.stores[name] = store
	ix.logger.Debug("opened index", "index", name, "scope", scope)
	return store, nil
}
