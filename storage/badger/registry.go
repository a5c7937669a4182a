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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/LessGoh/Claude-QA-UI-v2/storage"
	"github.com/dgraph-io/badger/v4"
)

// DocumentRegistry implements storage.DocumentRegistry for BadgerDB.
type DocumentRegistry struct {
	backend *Backend
	idSeq   *badger.Sequence
	logger  *slog.Logger
}

var _ storage.DocumentRegistry = (*DocumentRegistry)(nil)

// NewDocumentRegistry creates a registry on top of backend.
// The backend is not closed by the registry.
func NewDocumentRegistry(backend *Backend) (*DocumentRegistry, error) {
	idSeq, err := backend.GetSequence(documentRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRegistry{
		backend: backend,
		idSeq:   idSeq,
		logger:  slog.Default().With("component", "document-registry"),
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRegistry) Close() error {
	return r.idSeq.Release()
}

// AddDocument validates and appends a record.
func (r *DocumentRegistry) AddDocument(ctx context.Context, record *core.DocumentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record != nil && record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}
	if err := core.ValidateDocumentRecord(record); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if record.ID == 0 {
			id, err := r.nextID()
			if err != nil {
				return err
			}
			record.ID = id
		}

		key := makeDocumentRecordKey(record.IndexName, record.ID)
		if err := tx.Set(key, storage.MarshalDocumentRecord(record)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		r.logger.Debug("document recorded",
			"id", record.ID,
			"filename", record.Filename,
			"index", record.IndexName,
			"chunks", record.ChunkCount)
		return nil
	}, true)
}

// ListDocuments returns the records written to indexName in ID order.
func (r *DocumentRegistry) ListDocuments(ctx context.Context, indexName string) ([]*core.DocumentRecord, error) {
	if indexName == "" {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, core.ErrEmptyIndexName)
	}

	records := []*core.DocumentRecord{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocumentRecordKey(indexName)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.DocumentRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalDocumentRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record.IndexName != indexName {
				continue
			}
			records = append(records, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// nextID draws an ID from the sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func (r *DocumentRegistry) nextID() (core.ID, error) {
	next, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		if next, err = r.idSeq.Next(); err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}
