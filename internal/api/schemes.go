package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schemesetu/matchengine/internal/catalog"
	"github.com/schemesetu/matchengine/internal/retrieval"
	"github.com/schemesetu/matchengine/internal/rules"
)

type SchemesHandler struct {
	catalog  *catalog.Catalog
	searcher *retrieval.Searcher
	mapper   *rules.FieldMapper
}

func NewSchemesHandler(c *catalog.Catalog, s *retrieval.Searcher, m *rules.FieldMapper) *SchemesHandler {
	return &SchemesHandler{catalog: c, searcher: s, mapper: m}
}

type SchemeDetail struct {
	SchemeID     string                      `json:"scheme_id"`
	SchemeName   string                      `json:"scheme_name"`
	Description  string                      `json:"description,omitempty"`
	SourceURL    string                      `json:"source_url,omitempty"`
	Eligibility  rules.EligibilityStructured `json:"eligibility"`
	LastUpdated  string                      `json:"last_updated,omitempty"`
	GenderBucket string                      `json:"gender_bucket,omitempty"`
}

func (h *SchemesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := h.catalog.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scheme not found"})
		return
	}

	detail := SchemeDetail{
		SchemeID:     entry.SchemeID,
		SchemeName:   entry.SchemeName,
		Description:  entry.Description,
		SourceURL:    entry.SourceURL,
		Eligibility:  entry.Eligibility,
		GenderBucket: entry.GenderBucket,
	}
	if entry.LastUpdated != nil {
		detail.LastUpdated = entry.LastUpdated.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *SchemesHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"schemes":        h.catalog.Size(),
		"index_size":     h.searcher.IndexSize(),
		"field_synonyms": h.mapper.Size(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
