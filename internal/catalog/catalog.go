package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/schemesetu/matchengine/internal/rules"
	"github.com/schemesetu/matchengine/internal/store"
)

// Entry is one scheme held in memory for serving: parsed eligibility,
// display fields, the stored embedding, and the detected gender bucket.
type Entry struct {
	SchemeID     string
	SchemeName   string
	Description  string
	SourceURL    string
	Eligibility  rules.EligibilityStructured
	LastUpdated  *time.Time
	Embedding    []float64
	GenderBucket string
}

// Catalog is the read-side scheme catalog. It loads once at startup
// and is read-only during serving; Reload swaps the whole map under
// the write lock.
type Catalog struct {
	store  store.Store
	logger *slog.Logger

	mu      sync.RWMutex
	byID    map[string]*Entry
	ordered []*Entry
}

func New(s store.Store, logger *slog.Logger) *Catalog {
	return &Catalog{
		store:  s,
		logger: logger,
		byID:   make(map[string]*Entry),
	}
}

// Load reads every scheme from the store, parses its eligibility JSON,
// tags its gender bucket, and atomically swaps the in-memory state.
// A row with invalid eligibility JSON still serves; it just carries
// empty rule lists and a note, so its R degrades rather than the whole
// catalog failing.
func (c *Catalog) Load(ctx context.Context) error {
	schemes, err := c.store.ListSchemes(ctx)
	if err != nil {
		return fmt.Errorf("list schemes: %w", err)
	}

	byID := make(map[string]*Entry, len(schemes))
	ordered := make([]*Entry, 0, len(schemes))
	var invalid int
	for _, sc := range schemes {
		entry := &Entry{
			SchemeID:    sc.SchemeID,
			SchemeName:  sc.SchemeName,
			Description: sc.DescriptionRaw,
			SourceURL:   sc.SourceURL,
			LastUpdated: sc.LastUpdated,
			Embedding:   sc.Embedding,
		}

		if len(sc.Eligibility) > 0 {
			if err := json.Unmarshal(sc.Eligibility, &entry.Eligibility); err != nil {
				invalid++
				entry.Eligibility = rules.EligibilityStructured{Notes: "invalid_json"}
				c.logger.Warn("invalid eligibility JSON, serving scheme without rules",
					"scheme_id", sc.SchemeID, "error", err)
			}
		}
		if entry.Eligibility.SourceText == "" {
			entry.Eligibility.SourceText = sc.EligibilityRaw
		}

		entry.GenderBucket, _, _ = DetectGenderBucket(entry.Eligibility, entry.SchemeName)

		byID[entry.SchemeID] = entry
		ordered = append(ordered, entry)
	}

	c.mu.Lock()
	c.byID = byID
	c.ordered = ordered
	c.mu.Unlock()

	c.logger.Info("catalog loaded", "schemes", len(ordered), "invalid_eligibility", invalid)
	return nil
}

// Get returns the entry for a scheme ID.
func (c *Catalog) Get(id string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

// All returns a snapshot slice of every entry in scheme-ID order.
func (c *Catalog) All() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Size reports the number of loaded schemes.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ordered)
}
