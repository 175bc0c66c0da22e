package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/procscope/procscope/pkg/export"
)

// MemoryStore keeps documents in process memory. Contents are lost on
// restart, which is fine for tests and single-shot CLI runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]export.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]export.Document)}
}

// Fetch returns the document for processID, or [ErrNotFound].
func (s *MemoryStore) Fetch(ctx context.Context, processID string) (export.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[processID]
	if !ok {
		return export.Document{}, ErrNotFound
	}
	return doc, nil
}

// Save stores doc, generating a process ID when it has none.
func (s *MemoryStore) Save(ctx context.Context, doc export.Document) (string, error) {
	if doc.Process.ID == "" {
		doc.Process.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.Process.ID] = doc
	return doc.Process.ID, nil
}

// List returns process info for all stored documents, sorted by ID.
func (s *MemoryStore) List(ctx context.Context) ([]export.ProcessInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]export.ProcessInfo, 0, len(s.docs))
	for _, doc := range s.docs {
		infos = append(infos, doc.Process)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Delete removes the document for processID, or returns [ErrNotFound].
func (s *MemoryStore) Delete(ctx context.Context, processID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[processID]; !ok {
		return ErrNotFound
	}
	delete(s.docs, processID)
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
