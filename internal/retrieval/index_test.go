package retrieval

import (
	"math"
	"testing"
)

func TestIndexSearch(t *testing.T) {
	idx := NewIndex(
		[]string{"a", "b", "c"},
		[][]float64{
			{1, 0},
			{0, 1},
			{0.7071, 0.7071},
		},
	)

	t.Run("nearest first", func(t *testing.T) {
		hits := idx.Search([]float32{1, 0}, 3)
		if len(hits) != 3 {
			t.Fatalf("expected 3 hits, got %d", len(hits))
		}
		if hits[0].SchemeID != "a" {
			t.Errorf("expected a first, got %s", hits[0].SchemeID)
		}
		if math.Abs(hits[0].Similarity-1.0) > 1e-6 {
			t.Errorf("expected similarity 1.0, got %f", hits[0].Similarity)
		}
	})

	t.Run("topN truncates", func(t *testing.T) {
		hits := idx.Search([]float32{1, 0}, 1)
		if len(hits) != 1 {
			t.Errorf("expected 1 hit, got %d", len(hits))
		}
	})

	t.Run("negative similarity clamps to zero", func(t *testing.T) {
		hits := idx.Search([]float32{-1, 0}, 3)
		for _, h := range hits {
			if h.Similarity < 0 {
				t.Errorf("%s: similarity %f below 0", h.SchemeID, h.Similarity)
			}
		}
	})

	t.Run("similarities bounded", func(t *testing.T) {
		hits := idx.Search([]float32{0.3, 0.9}, 3)
		for _, h := range hits {
			if h.Similarity < 0 || h.Similarity > 1.0000001 {
				t.Errorf("%s: similarity %f outside [0,1]", h.SchemeID, h.Similarity)
			}
		}
	})

	t.Run("empty query", func(t *testing.T) {
		if hits := idx.Search(nil, 3); len(hits) != 0 {
			t.Errorf("expected no hits, got %d", len(hits))
		}
	})
}

func TestIndexSkipsEmptyVectors(t *testing.T) {
	idx := NewIndex(
		[]string{"a", "b", "c"},
		[][]float64{{1, 0}, nil, {0, 1}},
	)
	if idx.Len() != 2 {
		t.Errorf("expected 2 indexed schemes, got %d", idx.Len())
	}
	hits := idx.Search([]float32{1, 0}, 10)
	for _, h := range hits {
		if h.SchemeID == "b" {
			t.Error("scheme without embedding must not surface")
		}
	}
}

func TestIndexTieBreaksByID(t *testing.T) {
	idx := NewIndex(
		[]string{"z", "a", "m"},
		[][]float64{{1, 0}, {1, 0}, {1, 0}},
	)
	hits := idx.Search([]float32{1, 0}, 3)
	want := []string{"a", "m", "z"}
	for i, id := range want {
		if hits[i].SchemeID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, hits[i].SchemeID)
		}
	}
}
