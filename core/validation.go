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

import (
	"fmt"
	"time"
)

// ValidateDocumentRecord validates a DocumentRecord according to domain rules.
//
// Validation rules:
//   - Filename, Uploader and IndexName must not be empty
//   - Status must be StatusSuccess or StatusError
//   - FileSizeBytes and ChunkCount must not be negative
//   - UploadedAt must not be in the future
//
// NOT validated:
//   - ID (0 is valid until the registry assigns one)
func ValidateDocumentRecord(record *DocumentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidDocumentRecord)
	}

	if record.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrEmptyFilename)
	}

	if record.Uploader == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrEmptyUser)
	}

	if record.IndexName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrEmptyIndexName)
	}

	if err := ValidateStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, err)
	}

	if record.FileSizeBytes < 0 || record.ChunkCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrNegativeCount)
	}

	if !IsValidTimestamp(record.UploadedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateStatus validates that an IngestStatus has a known value.
func ValidateStatus(status IngestStatus) error {
	if status != StatusSuccess && status != StatusError {
		return fmt.Errorf("%w: value %q", ErrInvalidStatus, status)
	}
	return nil
}

// ValidateIndexScope validates that an IndexScope has a known value.
func ValidateIndexScope(scope IndexScope) error {
	if scope != ScopePersonal && scope != ScopeShared {
		return fmt.Errorf("%w: value %d", ErrInvalidIndexScope, scope)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
