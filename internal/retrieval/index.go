package retrieval

import (
	"math"
	"sort"
)

// Hit is one nearest-neighbor result: a scheme ID and its similarity
// to the query, clamped to [0,1].
type Hit struct {
	SchemeID   string
	Similarity float64
}

// Index is a brute-force cosine index over scheme embeddings. Vectors
// are normalized at build time so search is a plain dot product.
// The index is immutable after construction; a catalog reload builds
// a fresh one.
type Index struct {
	ids     []string
	vectors [][]float64
}

// NewIndex builds an index from parallel id/vector slices. Entries
// with empty vectors are skipped: schemes without embeddings simply
// never surface from retrieval.
func NewIndex(ids []string, vectors [][]float64) *Index {
	idx := &Index{}
	for i, id := range ids {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, normalize(vectors[i]))
	}
	return idx
}

// Len reports the number of indexed schemes.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// Search returns the topN most similar schemes for the query vector,
// sorted by similarity descending with scheme-ID tie-breaking.
// Negative cosine similarity clamps to 0; the downstream contract is
// S in [0,1].
func (idx *Index) Search(query []float32, topN int) []Hit {
	if len(query) == 0 || len(idx.ids) == 0 {
		return []Hit{}
	}

	q := normalize(toFloat64(query))
	hits := make([]Hit, 0, len(idx.ids))
	for i, vec := range idx.vectors {
		sim := dot(q, vec)
		if sim < 0 {
			sim = 0
		}
		hits = append(hits, Hit{SchemeID: idx.ids[i], Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].SchemeID < hits[j].SchemeID
	})

	if topN > 0 && topN < len(hits) {
		hits = hits[:topN]
	}
	return hits
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
