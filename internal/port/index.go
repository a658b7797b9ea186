package port

import (
	"context"

	"ragqa/internal/domain"
)

// Index is a mutable collection of embedded chunks.
type Index interface {
	// Insert embeds and stores chunks. Storage is durable when it returns.
	Insert(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k chunks nearest to query, most similar first.
	// An uninitialized index yields an empty result.
	Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error)

	// Clear irreversibly deletes the collection.
	Clear(ctx context.Context) error

	// Describe never fails.
	Describe(ctx context.Context) domain.IndexInfo
}
