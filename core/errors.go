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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocumentRecord indicates a DocumentRecord failed validation.
	ErrInvalidDocumentRecord = errors.New("invalid document record")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrEmptyUser indicates an uploader or owner is missing.
	ErrEmptyUser = errors.New("user cannot be empty")

	// ErrEmptyIndexName indicates the IndexName field is empty.
	ErrEmptyIndexName = errors.New("index name cannot be empty")

	// ErrInvalidStatus indicates an unknown IngestStatus value.
	ErrInvalidStatus = errors.New("invalid ingest status")

	// ErrInvalidIndexScope indicates an unknown IndexScope value.
	ErrInvalidIndexScope = errors.New("invalid index scope")

	// ErrNegativeCount indicates a size or chunk count below zero.
	ErrNegativeCount = errors.New("count cannot be negative")
)
