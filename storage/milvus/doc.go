// Package milvus stores fragments in a Milvus server.
//
// Each index maps to one collection ("pdf-qa-shared" becomes "pdf_qa_shared").
// Collections are created on first write with an auto-ID primary key, a
// float vector field indexed with IVF_FLAT over cosine similarity, and
// VarChar fields for the fragment text, its JSON-encoded metadata and the
// source filename. Every insert is flushed before returning so fragments are
// searchable as soon as AddDocuments succeeds.
package milvus
