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

package pdfqa

import (
	"context"
	"log/slog"

	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/ai/openai"
	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/LessGoh/Claude-QA-UI-v2/ingestion"
	"github.com/LessGoh/Claude-QA-UI-v2/session"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/LessGoh/Claude-QA-UI-v2/storage/badger"
	"github.com/LessGoh/Claude-QA-UI-v2/storage/milvus"
)

// Workspace wires the local store, the optional shared Milvus store, the embedding
// provider and the session manager into one handle.
type Workspace struct {
	backend  *badger.Backend
	registry storage.DocumentRegistry
	provider ai.AIProvider
	local    *badger.Indexes
	shared   *milvus.Indexes
	router   *session.Router
	sessions *session.Manager
	logger   *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	milvus   *milvus.Options
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The workspace takes ownership and closes it.
func WithProvider(provider ai.AIProvider) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.provider = provider
	}
}

// WithMilvus stores the shared index in Milvus instead of the local store.
func WithMilvus(opts *milvus.Options) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.milvus = opts
	}
}

// WithInMemory keeps the local store in memory; the path is ignored.
func WithInMemory() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = true
	}
}

// NewWorkspace opens the local store at filePath and builds the index router.
func NewWorkspace(filePath string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	registry, err := badger.NewDocumentRegistry(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			registry.Close()
			backend.Close()
			return nil, err
		}
	}

	ws := &Workspace{
		backend:  backend,
		registry: registry,
		provider: provider,
		local:    badger.NewIndexes(backend, provider.Embedder()),
		sessions: session.NewManager(),
		logger:   slog.Default().With("component", "workspace"),
	}

	var shared session.IndexManager
	if options.milvus != nil {
		client, err := milvus.New(options.milvus)
		if err != nil {
			ws.closeLocal()
			return nil, err
		}
		ws.shared = milvus.NewIndexes(client, provider.Embedder())
		shared = ws.shared
	}

	ws.router, err = session.NewRouter(ws.local, shared)
	if err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

// Close releases the shared store, the provider, the registry and the backend.
func (ws *Workspace) Close() error {
	if ws.shared != nil {
		if err := ws.shared.Close(context.Background()); err != nil {
			ws.logger.Error("error closing milvus client", "err", err)
		}
	}
	return ws.closeLocal()
}

func (ws *Workspace) closeLocal() error {
	if err := ws.provider.Close(); err != nil {
		ws.logger.Error("error closing AI provider", "err", err)
	}
	if err := ws.registry.Close(); err != nil {
		ws.logger.Error("error closing document registry", "err", err)
		return err
	}
	if err := ws.backend.Close(); err != nil {
		ws.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Registry returns the document registry.
func (ws *Workspace) Registry() storage.DocumentRegistry {
	return ws.registry
}

// Indexes returns the index manager routing scopes to their stores.
func (ws *Workspace) Indexes() session.IndexManager {
	return ws.router
}

// Sessions returns the session manager.
func (ws *Workspace) Sessions() *session.Manager {
	return ws.sessions
}

// SharedInMilvus reports whether the shared index lives in Milvus.
func (ws *Workspace) SharedInMilvus() bool {
	return ws.shared != nil
}

// NewCoordinator creates an ingestion coordinator over the workspace's stores.
func (ws *Workspace) NewCoordinator(opts ...ingestion.Option) (*ingestion.Coordinator, error) {
	return ingestion.NewCoordinator(ws.router, ws.registry, opts...)
}

// Upload ingests files into the index currently selected in the user's session.
func (ws *Workspace) Upload(ctx context.Context, user string, files []core.UploadedFile, opts ...ingestion.Option) (*ingestion.BatchResult, error) {
	s, err := ws.sessions.Get(user)
	if err != nil {
		return nil, err
	}
	coordinator, err := ws.NewCoordinator(opts...)
	if err != nil {
		return nil, err
	}
	return coordinator.IngestBatch(ctx, files, s.Selection, s.User)
}

// Documents lists the documents registered in the user's selected index.
func (ws *Workspace) Documents(ctx context.Context, user string) ([]*core.DocumentRecord, error) {
	s, err := ws.sessions.Get(user)
	if err != nil {
		return nil, err
	}
	name, err := s.CurrentIndexName()
	if err != nil {
		return nil, err
	}
	return ws.registry.ListDocuments(ctx, name)
}
