package milvus

import (
	"context"
	"sync"

	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/tmc/langchaingo/vectorstores"
)

// Indexes hands out Milvus-backed stores keyed by index scope and owner.
type Indexes struct {
	client   *Client
	embedder ai.Embedder

	mu     sync.Mutex
	stores map[string]*Store
}

// NewIndexes creates an index manager over client.
func NewIndexes(client *Client, embedder ai.Embedder) *Indexes {
	return &Indexes{
		client:   client,
		embedder: embedder,
		stores:   make(map[string]*Store),
	}
}

// VectorStore resolves scope and owner to a collection and returns its store.
func (ix *Indexes) VectorStore(ctx context.Context, scope core.IndexScope, owner string) (vectorstores.VectorStore, error) {
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
	store, err := NewStore(ix.client, ix.embedder, name)
	if err != nil {
		return nil, err
	}
	ix.stores[name] = store
	return store, nil
}

// Close closes the underlying client.
func (ix *Indexes) Close(ctx context.Context) error {
	return ix.client.Close(ctx)
}
