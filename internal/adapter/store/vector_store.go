package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
)

// BoltVectorStore implements VectorStore using BoltDB for persistence.
// Uses brute-force search; all rows are cached in memory after open.
// The database file only exists while a collection does.
type BoltVectorStore struct {
	path string

	mu      sync.RWMutex
	db      *bbolt.DB
	info    domain.CollectionInfo
	rows    []Row
	nextSeq uint64
}

type storedVector struct {
	Seq      uint64    `json:"n"`
	Vector   []float32 `json:"v"`
	Content  string    `json:"c"`
	Source   string    `json:"s"`
	Filename string    `json:"f"`
}

// NewBoltVectorStore opens the collection at path if one was persisted.
// A missing file leaves the store uninitialized.
func NewBoltVectorStore(path string) (*BoltVectorStore, error) {
	s := &BoltVectorStore{path: path}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to stat index: %w", err)
	}

	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BoltVectorStore) open() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	if err := s.load(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to load vectors: %w", err)
	}
	return nil
}

// load reads the collection identity and every row into memory.
func (s *BoltVectorStore) load() error {
	s.rows = nil
	s.nextSeq = 0
	s.info = domain.CollectionInfo{}

	return s.db.View(func(tx *bbolt.Tx) error {
		info, _, err := readCollection(tx)
		if err != nil {
			return err
		}
		s.info = info

		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			item := port.VectorItem{
				ID:      string(k),
				Vector:  stored.Vector,
				Content: stored.Content,
				Meta:    domain.SourceMetadata{SourcePath: stored.Source, Filename: stored.Filename},
			}
			s.rows = append(s.rows, NewRow(item, stored.Seq))
			if stored.Seq >= s.nextSeq {
				s.nextSeq = stored.Seq + 1
			}
			return nil
		})
	})
}

func (s *BoltVectorStore) ready() bool {
	return s.db != nil && s.info.Dimension > 0
}

// Upsert adds or updates vectors in the store. The first call creates the
// database file and records info as the collection identity.
func (s *BoltVectorStore) Upsert(info domain.CollectionInfo, items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if len(item.Vector) != info.Dimension {
			return fmt.Errorf("%w: expected dimension %d, got %d", domain.ErrEmbeddingMismatch, info.Dimension, len(item.Vector))
		}
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	if s.ready() {
		if err := CheckCompatible(s.info, info); err != nil {
			return err
		}
	}

	seq := s.nextSeq
	added := make([]Row, 0, len(items))

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if !s.ready() {
			if err := writeCollection(tx, info); err != nil {
				return err
			}
		}

		b := tx.Bucket(bucketVectors)
		for _, item := range items {
			stored := storedVector{
				Seq:      seq,
				Vector:   item.Vector,
				Content:  item.Content,
				Source:   item.Meta.SourcePath,
				Filename: item.Meta.Filename,
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}
			added = append(added, NewRow(item, seq))
			seq++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write vectors: %w", err)
	}

	// Update in-memory cache only after the commit.
	if !s.ready() {
		s.info = info
	}
	s.rows = mergeRows(s.rows, added)
	s.nextSeq = seq
	return nil
}

// mergeRows appends added, replacing rows that share an ID.
func mergeRows(rows, added []Row) []Row {
	pos := make(map[string]int, len(rows))
	for i, r := range rows {
		pos[r.ID] = i
	}
	for _, r := range added {
		if i, ok := pos[r.ID]; ok {
			rows[i] = r
			continue
		}
		pos[r.ID] = len(rows)
		rows = append(rows, r)
	}
	return rows
}

// Search finds the k nearest vectors to the query using cosine similarity.
func (s *BoltVectorStore) Search(query []float32, k int) ([]port.VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready() {
		return nil, nil
	}
	if len(query) != s.info.Dimension {
		return nil, fmt.Errorf("%w: query dimension %d, collection dimension %d", domain.ErrEmbeddingMismatch, len(query), s.info.Dimension)
	}

	return TopK(query, s.rows, k), nil
}

// Count returns the number of vectors in the store.
func (s *BoltVectorStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

func (s *BoltVectorStore) Info() (domain.CollectionInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, s.ready(), nil
}

// Drop closes the database and removes its file.
func (s *BoltVectorStore) Drop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close bolt db: %w", err)
		}
		s.db = nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove index file: %w", err)
	}

	s.rows = nil
	s.nextSeq = 0
	s.info = domain.CollectionInfo{}
	return nil
}

func (s *BoltVectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
