// Package chromemstore implements the chunk index on chromem-go's
// persistent database.
package chromemstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"ragqa/internal/adapter/store"
	"ragqa/internal/domain"
	"ragqa/internal/port"
)

const (
	metaSource   = "source"
	metaFilename = "filename"
	identityFile = "collection.json"
	dbDir        = "db"
)

// Index stores chunks in a chromem-go collection under dir/db. The
// collection identity (model and dimension) is kept in dir/collection.json.
type Index struct {
	dir      string
	name     string
	embedder port.Embedder

	mu   sync.RWMutex
	db   *chromem.DB
	coll *chromem.Collection
	info *domain.CollectionInfo
}

func New(dir, name string, embedder port.Embedder) (*Index, error) {
	ix := &Index{dir: dir, name: name, embedder: embedder}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ix, nil
		}
		return nil, fmt.Errorf("failed to stat chromem dir: %w", err)
	}

	if err := ix.open(); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) open() error {
	db, err := chromem.NewPersistentDB(filepath.Join(ix.dir, dbDir), false)
	if err != nil {
		return fmt.Errorf("failed to open chromem db: %w", err)
	}
	ix.db = db
	ix.coll = db.GetCollection(ix.name, ix.embeddingFunc())

	info, err := readIdentity(ix.dir)
	if err != nil {
		return err
	}
	if ix.coll != nil {
		ix.info = info
	}
	return nil
}

func (ix *Index) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := ix.embedder.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 {
			return nil, fmt.Errorf("embedding returned empty result")
		}
		return vecs[0], nil
	}
}

func (ix *Index) identity() domain.CollectionInfo {
	return domain.CollectionInfo{
		Name:      ix.name,
		Model:     ix.embedder.ModelName(),
		Dimension: ix.embedder.Dimension(),
	}
}

func (ix *Index) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		if err := ix.open(); err != nil {
			return err
		}
	}
	if ix.info != nil && ix.info.Model != ix.embedder.ModelName() {
		return store.CheckCompatible(*ix.info, ix.identity())
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	want := ix.identity()
	if ix.info != nil {
		if err := store.CheckCompatible(*ix.info, want); err != nil {
			return err
		}
	}
	for _, v := range vectors {
		if len(v) != want.Dimension {
			return fmt.Errorf("%w: expected dimension %d, got %d", domain.ErrEmbeddingMismatch, want.Dimension, len(v))
		}
	}

	if ix.coll == nil {
		coll, err := ix.db.GetOrCreateCollection(ix.name, map[string]string{
			"model":     want.Model,
			"dimension": fmt.Sprint(want.Dimension),
		}, ix.embeddingFunc())
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		if err := writeIdentity(ix.dir, want); err != nil {
			return err
		}
		ix.coll = coll
		ix.info = &want
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        uuid.NewString(),
			Content:   c.Content,
			Embedding: vectors[i],
			Metadata: map[string]string{
				metaSource:   c.Metadata.SourcePath,
				metaFilename: c.Metadata.Filename,
			},
		}
	}

	if err := ix.coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	slog.Debug("inserted chunks", "backend", "chromem", "collection", ix.name, "count", len(docs))
	return nil
}

func (ix *Index) Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidK, k)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.coll == nil || ix.info == nil {
		return domain.RetrievalResult{}, nil
	}
	if ix.info.Model != ix.embedder.ModelName() {
		return nil, store.CheckCompatible(*ix.info, ix.identity())
	}

	n := ix.coll.Count()
	if n == 0 {
		return domain.RetrievalResult{}, nil
	}
	if k > n {
		k = n
	}

	vecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := ix.coll.QueryEmbedding(ctx, vecs[0], k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	out := make(domain.RetrievalResult, 0, len(results))
	for _, r := range results {
		out = append(out, domain.ScoredChunk{
			Chunk: domain.Chunk{
				Content: r.Content,
				Metadata: domain.SourceMetadata{
					SourcePath: r.Metadata[metaSource],
					Filename:   r.Metadata[metaFilename],
				},
			},
			Score: float64(r.Similarity),
		})
	}
	return out, nil
}

// Clear deletes the collection and everything under dir.
func (ix *Index) Clear(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db != nil && ix.coll != nil {
		if err := ix.db.DeleteCollection(ix.name); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}
	if err := os.RemoveAll(ix.dir); err != nil {
		return fmt.Errorf("failed to remove chromem dir: %w", err)
	}

	ix.db = nil
	ix.coll = nil
	ix.info = nil
	slog.Info("collection cleared", "backend", "chromem", "collection", ix.name)
	return nil
}

func (ix *Index) Describe(ctx context.Context) domain.IndexInfo {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.coll == nil || ix.info == nil {
		return domain.IndexInfo{Status: domain.StatusNotLoaded}
	}
	return domain.IndexInfo{Status: domain.StatusLoaded, Count: ix.coll.Count()}
}

func (ix *Index) Close() error {
	return nil
}

func readIdentity(dir string) (*domain.CollectionInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, identityFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection identity: %w", err)
	}
	var info domain.CollectionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("corrupt collection identity: %w", err)
	}
	return &info, nil
}

func writeIdentity(dir string, info domain.CollectionInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, identityFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write collection identity: %w", err)
	}
	return nil
}
