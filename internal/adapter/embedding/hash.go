package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"ragqa/internal/adapter/analyzer"
)

// HashEmbedder is a local, deterministic embedder. Each term and each of
// its character trigrams is hashed into one of dim buckets with a signed
// weight; the vector is L2-normalized so dot product equals cosine.
// It needs no network and no model download.
type HashEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

const trigramWeight = 0.5

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(),
	}
}

func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		embeddings[i] = e.embedOne(text)
	}
	return embeddings, nil
}

// terms falls back to every word when only stopwords and one-letter words
// remain, and to the whole text when it has no words, so non-blank text
// never embeds to the zero vector.
func (e *HashEmbedder) terms(text string) []string {
	if terms := e.tokenizer.Tokenize(text); len(terms) > 0 {
		return terms
	}
	if words := e.tokenizer.Words(text); len(words) > 0 {
		return words
	}
	if trimmed := strings.ToLower(strings.TrimSpace(text)); trimmed != "" {
		return []string{trimmed}
	}
	return nil
}

func (e *HashEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	for _, term := range e.terms(text) {
		e.add(vec, "w:"+term, 1)
		for _, gram := range analyzer.Trigrams(term) {
			e.add(vec, "g:"+gram, trigramWeight)
		}
	}
	normalize(vec)
	return vec
}

func (e *HashEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) ModelName() string {
	return fmt.Sprintf("hash-%d", e.dimension)
}
