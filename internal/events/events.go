package events

// RecommendCompletedEvent is the audit record for one served
// recommendation request. Profile contents are deliberately excluded;
// only the fingerprint travels over the wire.
type RecommendCompletedEvent struct {
	RequestID          string  `json:"request_id"`
	Query              string  `json:"query"`
	ProfileFingerprint string  `json:"profile_fingerprint"`
	TopK               int     `json:"top_k"`
	Candidates         int     `json:"candidates"`
	Returned           int     `json:"returned"`
	TopSchemeID        string  `json:"top_scheme_id,omitempty"`
	TopFinalScore      float64 `json:"top_final_score,omitempty"`
	DurationMs         int64   `json:"duration_ms"`
}

// CatalogReloadedEvent announces an admin-triggered catalog reload.
type CatalogReloadedEvent struct {
	Schemes   int `json:"schemes"`
	IndexSize int `json:"index_size"`
}
