package core

import (
	"errors"
	"testing"
	"time"
)

func validRecord() *DocumentRecord {
	return &DocumentRecord{
		Filename:      "report.pdf",
		Uploader:      "alice",
		UploadedAt:    time.Now().Add(-1 * time.Minute),
		FileSizeBytes: 1024,
		ChunkCount:    3,
		IndexName:     "pdf-qa-personal-alice",
		Status:        StatusSuccess,
	}
}

func TestValidateDocumentRecord(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *DocumentRecord)
		wantErr error
	}{
		{name: "valid record", mutate: func(r *DocumentRecord) {}},
		{name: "valid error record", mutate: func(r *DocumentRecord) { r.Status = StatusError; r.ChunkCount = 0 }},
		{name: "empty filename", mutate: func(r *DocumentRecord) { r.Filename = "" }, wantErr: ErrEmptyFilename},
		{name: "empty uploader", mutate: func(r *DocumentRecord) { r.Uploader = "" }, wantErr: ErrEmptyUser},
		{name: "empty index", mutate: func(r *DocumentRecord) { r.IndexName = "" }, wantErr: ErrEmptyIndexName},
		{name: "unknown status", mutate: func(r *DocumentRecord) { r.Status = "pending" }, wantErr: ErrInvalidStatus},
		{name: "negative size", mutate: func(r *DocumentRecord) { r.FileSizeBytes = -1 }, wantErr: ErrNegativeCount},
		{name: "negative chunks", mutate: func(r *DocumentRecord) { r.ChunkCount = -1 }, wantErr: ErrNegativeCount},
		{name: "future timestamp", mutate: func(r *DocumentRecord) { r.UploadedAt = time.Now().Add(time.Hour) }, wantErr: ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(record)
			err := ValidateDocumentRecord(record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocumentRecord() unexpected error = %v", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidDocumentRecord) {
				t.Errorf("ValidateDocumentRecord() error = %v, want wrapped ErrInvalidDocumentRecord", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocumentRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocumentRecord_Nil(t *testing.T) {
	err := ValidateDocumentRecord(nil)
	if !errors.Is(err, ErrInvalidDocumentRecord) {
		t.Errorf("ValidateDocumentRecord(nil) error = %v, want ErrInvalidDocumentRecord", err)
	}
}

func TestValidateIndexScope(t *testing.T) {
	if err := ValidateIndexScope(ScopePersonal); err != nil {
		t.Errorf("ValidateIndexScope(ScopePersonal) = %v", err)
	}
	if err := ValidateIndexScope(ScopeShared); err != nil {
		t.Errorf("ValidateIndexScope(ScopeShared) = %v", err)
	}
	if err := ValidateIndexScope(IndexScope(0)); !errors.Is(err, ErrInvalidIndexScope) {
		t.Errorf("ValidateIndexScope(0) = %v, want ErrInvalidIndexScope", err)
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Now().Add(-time.Second)) {
		t.Errorf("past timestamp should be valid")
	}
	if IsValidTimestamp(time.Now().Add(time.Hour)) {
		t.Errorf("future timestamp should be invalid")
	}
}
