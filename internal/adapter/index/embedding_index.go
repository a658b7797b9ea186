// Package index joins an embedder and a vector store into a searchable
// chunk collection.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ragqa/internal/adapter/store"
	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// EmbeddingIndex embeds chunk contents with one embedder and keeps the
// vectors in a VectorStore.
type EmbeddingIndex struct {
	name     string
	embedder port.Embedder
	store    port.VectorStore
}

func NewEmbeddingIndex(name string, embedder port.Embedder, st port.VectorStore) *EmbeddingIndex {
	return &EmbeddingIndex{
		name:     name,
		embedder: embedder,
		store:    st,
	}
}

func (ix *EmbeddingIndex) collection() domain.CollectionInfo {
	return domain.CollectionInfo{
		Name:      ix.name,
		Model:     ix.embedder.ModelName(),
		Dimension: ix.embedder.Dimension(),
	}
}

// Insert embeds every chunk in one batched call and persists the rows.
func (ix *EmbeddingIndex) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	// Fail before paying for embeddings.
	if err := ix.checkCollection(); err != nil {
		return err
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

	items := make([]port.VectorItem, len(chunks))
	for i, c := range chunks {
		items[i] = port.VectorItem{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Content: c.Content,
			Meta:    c.Metadata,
		}
	}

	// Remote embedders report their real dimension only after a call.
	if err := ix.store.Upsert(ix.collection(), items); err != nil {
		return fmt.Errorf("failed to store vectors: %w", err)
	}

	slog.Debug("inserted chunks", "collection", ix.name, "count", len(items))
	return nil
}

func (ix *EmbeddingIndex) checkCollection() error {
	have, ok, err := ix.store.Info()
	if err != nil {
		return fmt.Errorf("failed to read collection: %w", err)
	}
	if !ok {
		return nil
	}
	// Dimension of a remote embedder is a guess until the first response.
	want := ix.collection()
	if have.Model != want.Model {
		return store.CheckCompatible(have, want)
	}
	return nil
}

// Search embeds query and returns the k most similar chunks.
func (ix *EmbeddingIndex) Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidK, k)
	}

	_, ok, err := ix.store.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	if !ok {
		slog.Debug("search on empty index", "err", domain.ErrIndexUninitialized)
		return domain.RetrievalResult{}, nil
	}
	if err := ix.checkCollection(); err != nil {
		return nil, err
	}

	embeddings, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := ix.store.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make(domain.RetrievalResult, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, domain.ScoredChunk{
			Chunk: domain.Chunk{Content: r.Content, Metadata: r.Meta},
			Score: r.Score,
		})
	}
	return chunks, nil
}

func (ix *EmbeddingIndex) Clear(ctx context.Context) error {
	if err := ix.store.Drop(); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	slog.Info("collection cleared", "collection", ix.name)
	return nil
}

func (ix *EmbeddingIndex) Describe(ctx context.Context) domain.IndexInfo {
	_, ok, err := ix.store.Info()
	if err != nil {
		return domain.IndexInfo{Status: fmt.Sprintf("Error: %v", err)}
	}
	if !ok {
		return domain.IndexInfo{Status: domain.StatusNotLoaded}
	}
	n, err := ix.store.Count()
	if err != nil {
		return domain.IndexInfo{Status: fmt.Sprintf("Error: %v", err)}
	}
	return domain.IndexInfo{Status: domain.StatusLoaded, Count: n}
}

// Close releases the underlying store.
func (ix *EmbeddingIndex) Close() error {
	return ix.store.Close()
}
