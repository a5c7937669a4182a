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

// Package storage provides the storage abstraction layer for the ingestion pipeline.
//
// It defines the DocumentRegistry contract and the binary encoding shared by
// backends. Vector stores are not defined here: every backend implements
// langchaingo's vectorstores.VectorStore so the pipeline can write to any of
// them through the same handle.
//
// # Backends
//
//   - storage/badger: embedded BadgerDB registry and vector store
//   - storage/milvus: remote Milvus vector store for shared indexes
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	registry, err := badger.NewDocumentRegistry(backend)  // returns storage.DocumentRegistry
//
// Use in tests with in-memory storage:
//
//	backend, err := badger.OpenBackend("", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. The ingestion
// coordinator writes from up to three workers at once.
package storage
