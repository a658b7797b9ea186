package port

import "ragqa/internal/domain"

type Chunker interface {
	Chunk(text string, meta domain.SourceMetadata) ([]domain.Chunk, error)
}
