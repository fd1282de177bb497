package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schemesetu/matchengine/internal/catalog"
	"github.com/schemesetu/matchengine/internal/events"
	"github.com/schemesetu/matchengine/internal/profile"
	"github.com/schemesetu/matchengine/internal/ranking"
	"github.com/schemesetu/matchengine/internal/retrieval"
)

type RecommendHandler struct {
	catalog       *catalog.Catalog
	searcher      *retrieval.Searcher
	ranker        *ranking.Ranker
	events        events.Client
	defaultTopK   int
	maxCandidates int
	logger        *slog.Logger
}

func NewRecommendHandler(c *catalog.Catalog, s *retrieval.Searcher, rk *ranking.Ranker, ev events.Client, defaultTopK, maxCandidates int, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{
		catalog:       c,
		searcher:      s,
		ranker:        rk,
		events:        ev,
		defaultTopK:   defaultTopK,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

type RecommendRequest struct {
	Query        string          `json:"query"`
	Profile      profile.Profile `json:"profile"`
	TopK         int             `json:"top_k,omitempty"`
	GenderBucket string          `json:"gender_bucket,omitempty"`
}

type RecommendResponse struct {
	RequestID  string                 `json:"request_id"`
	Results    []ranking.SchemeResult `json:"results"`
	Candidates int                    `json:"candidates"`
	DurationMs int64                  `json:"duration_ms"`
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query required"})
		return
	}

	start := time.Now()
	requestID := uuid.New().String()

	topK := req.TopK
	if topK <= 0 {
		topK = h.defaultTopK
	}
	if topK > h.maxCandidates {
		topK = h.maxCandidates
	}

	hits, err := h.searcher.Search(r.Context(), &req.Profile, req.Query, h.maxCandidates)
	if err != nil {
		h.logger.Error("retrieval failed", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "retrieval failed"})
		return
	}

	userBucket := resolveUserBucket(req.GenderBucket, req.Profile.Gender)

	candidates := make([]ranking.Candidate, 0, len(hits))
	for _, hit := range hits {
		entry, ok := h.catalog.Get(hit.SchemeID)
		if !ok {
			continue
		}
		if !bucketAllowed(entry.GenderBucket, userBucket) {
			continue
		}
		candidates = append(candidates, ranking.Candidate{
			SchemeID:     entry.SchemeID,
			SchemeName:   entry.SchemeName,
			Eligibility:  entry.Eligibility,
			LastUpdated:  entry.LastUpdated,
			Semantic:     hit.Similarity,
			Description:  entry.Description,
			SourceURL:    entry.SourceURL,
			GenderBucket: entry.GenderBucket,
		})
	}

	results := h.ranker.Rank(&req.Profile, candidates, topK, time.Now())
	if results == nil {
		results = []ranking.SchemeResult{}
	}

	duration := time.Since(start)
	recommendationsTotal.Inc()
	recommendDuration.Observe(duration.Seconds())
	observeVerdicts(results)

	resp := RecommendResponse{
		RequestID:  requestID,
		Results:    results,
		Candidates: len(candidates),
		DurationMs: duration.Milliseconds(),
	}

	if h.events != nil {
		ev := events.RecommendCompletedEvent{
			RequestID:          requestID,
			Query:              req.Query,
			ProfileFingerprint: req.Profile.Fingerprint(),
			TopK:               topK,
			Candidates:         len(candidates),
			Returned:           len(results),
			DurationMs:         duration.Milliseconds(),
		}
		if len(results) > 0 {
			ev.TopSchemeID = results[0].SchemeID
			ev.TopFinalScore = results[0].FinalScore
		}
		if err := h.events.Publish(events.SubjectRecommendCompleted, ev); err != nil {
			h.logger.Warn("event publish failed", "request_id", requestID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// resolveUserBucket prefers an explicit request override, then falls
// back to the profile gender. Anything other than male/female means
// no bucket filtering.
func resolveUserBucket(override, gender string) string {
	b := strings.ToLower(strings.TrimSpace(override))
	if b == "" {
		b = strings.ToLower(strings.TrimSpace(gender))
	}
	switch b {
	case catalog.BucketFemale, catalog.BucketMale:
		return b
	}
	return ""
}

// bucketAllowed drops schemes tagged for the opposite gender. Untagged
// schemes and unbucketed users always pass.
func bucketAllowed(schemeBucket, userBucket string) bool {
	if schemeBucket == "" || userBucket == "" {
		return true
	}
	return schemeBucket == userBucket
}

func observeVerdicts(results []ranking.SchemeResult) {
	for _, res := range results {
		for _, sr := range res.Breakdown.Required {
			ruleVerdictsTotal.WithLabelValues(string(sr.Verdict)).Inc()
		}
		for _, sr := range res.Breakdown.Optional {
			ruleVerdictsTotal.WithLabelValues(string(sr.Verdict)).Inc()
		}
	}
}
