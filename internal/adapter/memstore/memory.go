// Package memstore is an ephemeral VectorStore for tests and dry runs.
package memstore

import (
	"fmt"
	"sync"

	"ragqa/internal/adapter/store"
	"ragqa/internal/domain"
	"ragqa/internal/port"
)

type MemoryStore struct {
	mu      sync.RWMutex
	info    domain.CollectionInfo
	ready   bool
	rows    []store.Row
	ids     map[string]int
	nextSeq uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]int)}
}

func (s *MemoryStore) Upsert(info domain.CollectionInfo, items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		if err := store.CheckCompatible(s.info, info); err != nil {
			return err
		}
	}
	for _, item := range items {
		if len(item.Vector) != info.Dimension {
			return fmt.Errorf("%w: expected dimension %d, got %d", domain.ErrEmbeddingMismatch, info.Dimension, len(item.Vector))
		}
	}

	if !s.ready {
		s.info = info
		s.ready = true
	}
	for _, item := range items {
		row := store.NewRow(item, s.nextSeq)
		s.nextSeq++
		if i, ok := s.ids[item.ID]; ok {
			s.rows[i] = row
			continue
		}
		s.ids[item.ID] = len(s.rows)
		s.rows = append(s.rows, row)
	}
	return nil
}

func (s *MemoryStore) Search(query []float32, k int) ([]port.VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return nil, nil
	}
	if len(query) != s.info.Dimension {
		return nil, fmt.Errorf("%w: query dimension %d, collection dimension %d", domain.ErrEmbeddingMismatch, len(query), s.info.Dimension)
	}
	return store.TopK(query, s.rows, k), nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

func (s *MemoryStore) Info() (domain.CollectionInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, s.ready, nil
}

func (s *MemoryStore) Drop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = domain.CollectionInfo{}
	s.ready = false
	s.rows = nil
	s.ids = make(map[string]int)
	s.nextSeq = 0
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
