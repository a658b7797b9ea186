package store

import (
	"math"
	"sort"

	"ragqa/internal/port"
)

// Row is one stored vector with its payload.
type Row struct {
	ID     string
	Vector []float32
	Item   port.VectorItem
	seq    uint64
}

// TopK ranks rows by cosine similarity to query and returns the best k.
// Ties keep insertion order.
func TopK(query []float32, rows []Row, k int) []port.VectorResult {
	if k <= 0 || len(rows) == 0 {
		return nil
	}

	type scored struct {
		row   Row
		score float64
	}

	scores := make([]scored, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, scored{row: row, score: CosineSimilarity(query, row.Vector)})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].row.seq < scores[j].row.seq
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]port.VectorResult, k)
	for i := 0; i < k; i++ {
		results[i] = port.VectorResult{
			ID:      scores[i].row.ID,
			Score:   scores[i].score,
			Content: scores[i].row.Item.Content,
			Meta:    scores[i].row.Item.Meta,
		}
	}
	return results
}

// NewRow builds a row with an explicit insertion sequence.
func NewRow(item port.VectorItem, seq uint64) Row {
	return Row{ID: item.ID, Vector: item.Vector, Item: item, seq: seq}
}

// CosineSimilarity calculates the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
