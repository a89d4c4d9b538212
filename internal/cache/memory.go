package cache

import (
	"context"
	"sync"

	"github.com/studioware/backoffice/internal/billing"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]billing.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]billing.Document)}
}

// Get returns the snapshot for a document id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*billing.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc.Items = append([]billing.LineItem(nil), doc.Items...)
	return &doc, nil
}

// GetAll returns every snapshot.
func (s *MemoryStore) GetAll(ctx context.Context) ([]billing.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]billing.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		doc.Items = append([]billing.LineItem(nil), doc.Items...)
		docs = append(docs, doc)
	}
	return docs, nil
}

// Put stores a snapshot keyed by document id.
func (s *MemoryStore) Put(ctx context.Context, doc billing.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.Items = append([]billing.LineItem(nil), doc.Items...)
	s.docs[doc.ID] = doc
	return nil
}

// Delete removes a snapshot. Deleting an absent id is not an error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// ReplaceAll swaps the entire contents for the given set.
func (s *MemoryStore) ReplaceAll(ctx context.Context, docs []billing.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]billing.Document, len(docs))
	for _, doc := range docs {
		doc.Items = append([]billing.LineItem(nil), doc.Items...)
		s.docs[doc.ID] = doc
	}
	return nil
}
