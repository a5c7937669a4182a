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

package badger

import (
	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
)

// NewMemoryStorage creates an in-memory backend with a registry and index manager for testing.
// Caller must close the registry and backend when done.
func NewMemoryStorage(embedder ai.Embedder) (storage.DocumentRegistry, *Indexes, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	registry, err := NewDocumentRegistry(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return registry, NewIndexes(backend, embedder), backend, nil
}
