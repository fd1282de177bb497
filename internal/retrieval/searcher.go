package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/schemesetu/matchengine/internal/profile"
)

// Searcher is the retrieval stage: it embeds a user document built
// from the profile and query, then looks up the nearest schemes in the
// current index. The index pointer is swapped atomically on catalog
// reload.
type Searcher struct {
	embedder Embedder
	index    atomic.Pointer[Index]
}

func NewSearcher(embedder Embedder, index *Index) *Searcher {
	s := &Searcher{embedder: embedder}
	s.index.Store(index)
	return s
}

// SetIndex swaps in a freshly built index.
func (s *Searcher) SetIndex(index *Index) {
	s.index.Store(index)
}

// IndexSize reports the number of schemes in the active index.
func (s *Searcher) IndexSize() int {
	if idx := s.index.Load(); idx != nil {
		return idx.Len()
	}
	return 0
}

// Search embeds the user document and returns up to topN candidate
// hits with similarities in [0,1].
func (s *Searcher) Search(ctx context.Context, p *profile.Profile, freeText string, topN int) ([]Hit, error) {
	idx := s.index.Load()
	if idx == nil || idx.Len() == 0 {
		return []Hit{}, nil
	}

	vec, err := s.embedder.EmbedText(ctx, BuildUserDoc(p, freeText))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return idx.Search(vec, topN), nil
}

// BuildUserDoc renders the profile and free-text need as the labeled
// text block the scheme embeddings were built against. Unset fields
// render empty so the layout stays stable.
func BuildUserDoc(p *profile.Profile, freeText string) string {
	var b strings.Builder
	b.WriteString("User profile:\n")
	writeLine(&b, "State", p.State)
	writeLine(&b, "District", p.District)
	if p.Age != nil {
		writeLine(&b, "Age", fmt.Sprintf("%d", *p.Age))
	} else {
		writeLine(&b, "Age", "")
	}
	writeLine(&b, "Category", p.Category)
	if p.IncomeAnnual != nil {
		writeLine(&b, "Income (annual)", fmt.Sprintf("%g", *p.IncomeAnnual))
	} else {
		writeLine(&b, "Income (annual)", "")
	}
	writeLine(&b, "Occupation", p.Occupation)
	if p.Farmer != nil {
		writeLine(&b, "Farmer", fmt.Sprintf("%t", *p.Farmer))
	} else {
		writeLine(&b, "Farmer", "")
	}
	writeLine(&b, "Business type", p.BusinessType)
	b.WriteString("\nUser need: ")
	b.WriteString(freeText)
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
