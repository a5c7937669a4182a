// Package pdfqa ingests uploaded PDF documents into searchable vector indexes.
//
// A Workspace is the entry point: it opens the local store, connects the optional
// shared Milvus index, and hands out ingestion coordinators bound to the user's
// selected index.
//
//	ws, err := pdfqa.NewWorkspace("./data")
//	if err != nil {
//		return err
//	}
//	defer ws.Close()
//
//	if _, err := ws.Sessions().Login("alice"); err != nil {
//		return err
//	}
//	result, err := ws.Upload(ctx, "alice", files)
package pdfqa
