package port

import (
	"context"

	"ragqa/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore holds the rows of one vector collection.
// A store with no collection is uninitialized: Search returns no results and
// Info reports ok=false.
type VectorStore interface {
	// Upsert adds rows, creating the collection described by info if needed.
	Upsert(info domain.CollectionInfo, items []VectorItem) error

	// Search finds the k nearest vectors to the query.
	Search(query []float32, k int) ([]VectorResult, error)

	// Count returns the number of vectors in the store.
	Count() (int, error)

	// Info returns the identity of the current collection.
	Info() (domain.CollectionInfo, bool, error)

	// Drop deletes the collection and its persisted storage.
	Drop() error

	Close() error
}

// VectorItem represents a vector to be stored.
type VectorItem struct {
	ID      string    // Unique identifier
	Vector  []float32 // Embedding vector
	Content string
	Meta    domain.SourceMetadata
}

// VectorResult represents a search result.
type VectorResult struct {
	ID      string
	Score   float64 // Cosine similarity (higher is better)
	Content string
	Meta    domain.SourceMetadata
}
