package inventory

import (
	"context"
	"sync"
)

// MemStore keeps the document in process memory. Loads and saves copy, so
// callers never share slices with the store.
type MemStore struct {
	mu    sync.RWMutex
	doc   Document
	saved bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.saved {
		return emptyDocument(), nil
	}
	return s.doc.clone(), nil
}

func (s *MemStore) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc.clone()
	s.saved = true
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) Close() error { return nil }
