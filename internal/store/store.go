// Package store abstracts the document database behind a small port so the
// services layer runs unchanged against Cloud Firestore or the local
// file-backed store used when no credentials are configured.
package store

import (
	"context"
	"errors"
)

var (
	// ErrInvalidRef marks an operation on a reference built from an empty
	// or malformed path component. The reference itself is always non-nil;
	// the error surfaces when it is used.
	ErrInvalidRef = errors.New("store: invalid document or collection reference")

	// ErrNotFound marks an update against a document that does not exist.
	ErrNotFound = errors.New("store: document not found")
)

// Snapshot is one document read. Exists reports whether the document was
// present; a missing document is a Snapshot with Exists false, not an error.
type Snapshot struct {
	ID     string
	Exists bool
	Data   map[string]any
}

// Store is a handle to one document database.
type Store interface {
	// Collection returns a top-level collection reference.
	Collection(name string) CollectionRef
	// Batch starts a buffered write batch. Operations queue locally and
	// apply on Commit.
	Batch() WriteBatch
	Close() error
}

// Query reads a filtered or ordered view of a collection.
type Query interface {
	// Documents runs the query and returns all matching snapshots.
	Documents(ctx context.Context) ([]Snapshot, error)
	Limit(n int) Query
	WhereEqual(field string, value any) Query
	OrderByDesc(field string) Query
}

// CollectionRef is a reference to one collection. The zero-filter
// CollectionRef is also a Query over all its documents.
type CollectionRef interface {
	Query
	// Path is the slash-separated location of the collection.
	Path() string
	// Doc returns a reference to a named document in the collection.
	Doc(id string) DocumentRef
	// NewDoc returns a reference with a fresh generated id.
	NewDoc() DocumentRef
	// Add creates a document with a generated id and returns that id.
	Add(ctx context.Context, data map[string]any) (string, error)
}

// DocumentRef is a reference to one document. References can be built for
// documents that do not exist; existence is a property of Get's Snapshot.
type DocumentRef interface {
	ID() string
	Path() string
	// Collection returns a subcollection reference under this document.
	Collection(name string) CollectionRef
	Get(ctx context.Context) (Snapshot, error)
	// Set writes the full document, replacing any existing fields.
	Set(ctx context.Context, data map[string]any) error
	// SetMerge writes the given fields, leaving others untouched.
	SetMerge(ctx context.Context, data map[string]any) error
	// Update modifies fields of an existing document; it fails with a
	// not-found error when the document is missing.
	Update(ctx context.Context, data map[string]any) error
	// Delete removes the document. Deleting a missing document succeeds.
	// Subcollection documents are not touched.
	Delete(ctx context.Context) error
}

// WriteBatch buffers writes for a single commit. Refs passed in must come
// from the same Store that created the batch.
type WriteBatch interface {
	Set(doc DocumentRef, data map[string]any)
	Delete(doc DocumentRef)
	Commit(ctx context.Context) error
}
