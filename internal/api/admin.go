package api

import (
	"log/slog"
	"net/http"

	"github.com/schemesetu/matchengine/internal/catalog"
	"github.com/schemesetu/matchengine/internal/events"
	"github.com/schemesetu/matchengine/internal/retrieval"
	"github.com/schemesetu/matchengine/internal/store"
)

type AdminHandler struct {
	store    store.Store
	catalog  *catalog.Catalog
	searcher *retrieval.Searcher
	events   events.Client
	logger   *slog.Logger
}

func NewAdminHandler(s store.Store, c *catalog.Catalog, se *retrieval.Searcher, ev events.Client, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: s, catalog: c, searcher: se, events: ev, logger: logger}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.CountSchemes(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stored_schemes": stored,
		"loaded_schemes": h.catalog.Size(),
		"index_size":     h.searcher.IndexSize(),
	})
}

// Reload re-reads the catalog from the store and rebuilds the vector
// index in place. Requests in flight keep serving off the old index
// until the swap.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	entries := h.catalog.All()
	ids := make([]string, len(entries))
	vectors := make([][]float64, len(entries))
	for i, e := range entries {
		ids[i] = e.SchemeID
		vectors[i] = e.Embedding
	}
	h.searcher.SetIndex(retrieval.NewIndex(ids, vectors))
	catalogSize.Set(float64(h.catalog.Size()))

	if h.events != nil {
		if err := h.events.Publish(events.SubjectCatalogReloaded, events.CatalogReloadedEvent{
			Schemes:   h.catalog.Size(),
			IndexSize: h.searcher.IndexSize(),
		}); err != nil {
			h.logger.Warn("event publish failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "reloaded",
		"schemes":    h.catalog.Size(),
		"index_size": h.searcher.IndexSize(),
	})
}
