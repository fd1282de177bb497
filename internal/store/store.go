package store

import (
	"context"
	"encoding/json"
	"time"
)

// Scheme is one catalog row as persisted. Eligibility is kept as raw
// JSON at this layer; the catalog parses it defensively so one bad row
// never takes down loading.
type Scheme struct {
	SchemeID       string          `json:"scheme_id"`
	SchemeName     string          `json:"scheme_name"`
	DescriptionRaw string          `json:"description_raw,omitempty"`
	SourceURL      string          `json:"source_url,omitempty"`
	Eligibility    json.RawMessage `json:"eligibility_structured,omitempty"`
	EligibilityRaw string          `json:"eligibility_raw,omitempty"`
	LastUpdated    *time.Time      `json:"last_updated,omitempty"`
	Embedding      []float64       `json:"embedding,omitempty"`
}

// Store is the persistence boundary for the scheme catalog.
type Store interface {
	GetScheme(ctx context.Context, id string) (*Scheme, error)
	ListSchemes(ctx context.Context) ([]*Scheme, error)
	UpsertScheme(ctx context.Context, s *Scheme) error
	CountSchemes(ctx context.Context) (int, error)
	Close() error
}
