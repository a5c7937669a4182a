package session

import (
	"context"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/tmc/langchaingo/vectorstores"
)

// IndexManager opens the vector store backing an index scope.
// Implementations must be safe for concurrent use.
type IndexManager interface {
	VectorStore(ctx context.Context, scope core.IndexScope, owner string) (vectorstores.VectorStore, error)
}
