// Package store persists process documents.
//
// A [Store] holds complete [export.Document] values keyed by process ID.
// Two backends are provided: [MemoryStore] for tests and single-shot CLI
// runs, and [MongoStore] for deployments where several procscope instances
// share one document collection.
package store

import (
	"context"
	"errors"

	"github.com/procscope/procscope/pkg/export"
)

// ErrNotFound is returned when no document exists for a process ID.
var ErrNotFound = errors.New("process not found")

// Store is the persistence interface for process documents.
type Store interface {
	// Fetch returns the document for processID, or [ErrNotFound].
	Fetch(ctx context.Context, processID string) (export.Document, error)

	// Save stores doc, replacing any existing document with the same
	// process ID. If the document has no process ID, one is generated.
	// The effective ID is returned.
	Save(ctx context.Context, doc export.Document) (string, error)

	// List returns summary info for all stored processes, sorted by ID.
	List(ctx context.Context) ([]export.ProcessInfo, error)

	// Delete removes the document for processID, or returns [ErrNotFound].
	Delete(ctx context.Context, processID string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
