package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// MaxFileSize is the largest upload accepted by the pipeline (50 MiB).
const MaxFileSize int64 = 50 * 1024 * 1024

// UploadedFile is a single file handed to the pipeline by the caller.
// The pipeline never modifies it.
type UploadedFile struct {
	Name    string
	Content []byte
	Size    int64 // Declared size in bytes; len(Content) is used when zero
}

// SizeBytes returns the declared size, falling back to the content length.
func (f UploadedFile) SizeBytes() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Content))
}

// SizeMB returns the size in mebibytes for display.
func (f UploadedFile) SizeMB() float64 {
	return float64(f.SizeBytes()) / (1024 * 1024)
}

// Oversized reports whether the file exceeds MaxFileSize.
func (f UploadedFile) Oversized() bool {
	return f.SizeBytes() > MaxFileSize
}

// IngestStatus is the outcome of ingesting one file.
type IngestStatus string

const (
	StatusSuccess IngestStatus = "success"
	StatusError   IngestStatus = "error"
)

// DocumentRecord is the durable provenance entry written once per ingested file.
type DocumentRecord struct {
	ID            ID
	Filename      string
	Uploader      string
	UploadedAt    time.Time
	FileSizeBytes int64
	ChunkCount    int
	IndexName     string
	Status        IngestStatus
}

// FileResult is the per-file outcome of a batch.
// Error is set iff Status is StatusError.
type FileResult struct {
	Filename       string
	Status         IngestStatus
	ChunkCount     int
	Error          string
	ProcessingTime time.Duration
}

// Succeeded reports whether the file was ingested.
func (r FileResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// ProcessingSeconds returns the processing time in seconds.
func (r FileResult) ProcessingSeconds() float64 {
	return r.ProcessingTime.Seconds()
}
