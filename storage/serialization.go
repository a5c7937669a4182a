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

package storage

import (
	"fmt"
	"time"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// StoredFragment is the persisted form of one text fragment in the embedded vector store.
// Metadata holds the fragment's metadata map encoded as JSON.
type StoredFragment struct {
	ID        string
	IndexName string
	Content   string
	Metadata  string
	Vector    []float32
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalDocumentRecord serializes a DocumentRecord to bytes.
func MarshalDocumentRecord(record *core.DocumentRecord) []byte {
	buf := make([]byte, documentRecordMUS.Size(*record))
	documentRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalDocumentRecord deserializes a DocumentRecord from bytes.
func UnmarshalDocumentRecord(data []byte) (*core.DocumentRecord, error) {
	record, _, err := documentRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalFragment serializes a StoredFragment to bytes.
func MarshalFragment(fragment *StoredFragment) []byte {
	buf := make([]byte, fragmentMUS.Size(*fragment))
	fragmentMUS.Marshal(*fragment, buf)
	return buf
}

// UnmarshalFragment deserializes a StoredFragment from bytes.
func UnmarshalFragment(data []byte) (*StoredFragment, error) {
	fragment, _, err := fragmentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &fragment, nil
}

var (
	documentRecordMUS = documentRecordSer{}
	fragmentMUS       = fragmentSer{}
)

// documentRecordSer encodes fields in declaration order.
// UploadedAt is stored as Unix microseconds.
type documentRecordSer struct{}

func (documentRecordSer) Marshal(r core.DocumentRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(r.ID), bs)
	n += ord.String.Marshal(r.Filename, bs[n:])
	n += ord.String.Marshal(r.Uploader, bs[n:])
	n += varint.Int64.Marshal(r.UploadedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(r.FileSizeBytes, bs[n:])
	n += varint.Int.Marshal(r.ChunkCount, bs[n:])
	n += ord.String.Marshal(r.IndexName, bs[n:])
	return n + ord.String.Marshal(string(r.Status), bs[n:])
}

func (documentRecordSer) Unmarshal(bs []byte) (r core.DocumentRecord, n int, err error) {
	var (
		n1     int
		id     uint64
		micros int64
		status string
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	r.ID = core.ID(id)
	r.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Uploader, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.UploadedAt = time.UnixMicro(micros).UTC()
	r.FileSizeBytes, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.IndexName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	status, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	r.Status = core.IngestStatus(status)
	return
}

func (documentRecordSer) Size(r core.DocumentRecord) (size int) {
	size = varint.Uint64.Size(uint64(r.ID))
	size += ord.String.Size(r.Filename)
	size += ord.String.Size(r.Uploader)
	size += varint.Int64.Size(r.UploadedAt.UnixMicro())
	size += varint.Int64.Size(r.FileSizeBytes)
	size += varint.Int.Size(r.ChunkCount)
	size += ord.String.Size(r.IndexName)
	return size + ord.String.Size(string(r.Status))
}

// fragmentSer writes the vector as a varint length followed by fixed-width floats.
type fragmentSer struct{}

func (fragmentSer) Marshal(f StoredFragment, bs []byte) (n int) {
	n = ord.String.Marshal(f.ID, bs)
	n += ord.String.Marshal(f.IndexName, bs[n:])
	n += ord.String.Marshal(f.Content, bs[n:])
	n += ord.String.Marshal(f.Metadata, bs[n:])
	n += varint.Int.Marshal(len(f.Vector), bs[n:])
	for _, v := range f.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	return n
}

func (fragmentSer) Unmarshal(bs []byte) (f StoredFragment, n int, err error) {
	var n1, length int
	f.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	f.IndexName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	f.Metadata, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 || length*4 > len(bs)-n {
		err = ErrTruncatedVector
		return
	}
	f.Vector = make([]float32, length)
	for i := range f.Vector {
		f.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (fragmentSer) Size(f StoredFragment) (size int) {
	size = ord.String.Size(f.ID)
	size += ord.String.Size(f.IndexName)
	size += ord.String.Size(f.Content)
	size += ord.String.Size(f.Metadata)
	size += varint.Int.Size(len(f.Vector))
	for _, v := range f.Vector {
		size += raw.Float32.Size(v)
	}
	return size
}
