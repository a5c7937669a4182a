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

import "errors"

var (
	// ErrFileTooLarge is the reason attached to rejected uploads.
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")

	// ErrStoreWrite indicates the vector store rejected a file's fragments.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrIndexResolution indicates the target index could not be opened.
	ErrIndexResolution = errors.New("index resolution failed")

	// ErrTaskFault indicates a task panicked or could not be scheduled.
	ErrTaskFault = errors.New("ingestion task fault")

	// ErrNoValidFiles is returned when every file in a batch was rejected.
	ErrNoValidFiles = errors.New("no valid files to process")

	// ErrNoFragments indicates splitting produced nothing to store.
	ErrNoFragments = errors.New("no text fragments produced")

	// ErrIndexManagerRequired is returned when an index manager is not provided.
	ErrIndexManagerRequired = errors.New("index manager required")

	// ErrRegistryRequired is returned when a document registry is not provided.
	ErrRegistryRequired = errors.New("document registry required")

	// ErrStoreRequired is returned when a task has no vector store.
	ErrStoreRequired = errors.New("vector store required")

	// ErrUploaderRequired is returned when a batch has no uploader.
	ErrUploaderRequired = errors.New("uploader required")
)
