// Package session tracks who is uploading and which index they have selected.
//
// A Manager owns the explicit session lifecycle (Login, Logout). IndexManager is the
// factory the ingestion coordinator uses to open a vector store for a scope and owner;
// Router dispatches personal and shared scopes to separate backends.
package session
