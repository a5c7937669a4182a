// Package ingestion turns batches of uploaded PDFs into stored, annotated text fragments.
//
// A Coordinator validates file sizes, resolves the target index once per batch and
// runs one Task per file on a bounded ants pool. Each Task extracts page text, splits
// it into overlapping fragments, annotates them with provenance metadata, writes them
// to the vector store in one call and records the upload in the document registry.
//
// Per-file failures never abort a batch: every valid file yields exactly one
// core.FileResult, and oversized files are reported separately as Rejections.
package ingestion
