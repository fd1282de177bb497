package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemesetu/matchengine/internal/catalog"
	"github.com/schemesetu/matchengine/internal/ranking"
	"github.com/schemesetu/matchengine/internal/retrieval"
	"github.com/schemesetu/matchengine/internal/rules"
	"github.com/schemesetu/matchengine/internal/scoring"
	"github.com/schemesetu/matchengine/internal/store"
)

type fakeStore struct {
	schemes []*store.Scheme
}

func (f *fakeStore) GetScheme(_ context.Context, id string) (*store.Scheme, error) {
	for _, s := range f.schemes {
		if s.SchemeID == id {
			return s, nil
		}
	}
	return nil, nil
}
func (f *fakeStore) ListSchemes(_ context.Context) ([]*store.Scheme, error) { return f.schemes, nil }
func (f *fakeStore) UpsertScheme(_ context.Context, _ *store.Scheme) error  { return nil }
func (f *fakeStore) CountSchemes(_ context.Context) (int, error)            { return len(f.schemes), nil }
func (f *fakeStore) Close() error                                           { return nil }

type fakeEmbedder struct {
	vector []float32
}

func (f *fakeEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return f.vector, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSchemes() []*store.Scheme {
	return []*store.Scheme{
		{
			SchemeID:   "kisan1",
			SchemeName: "Kisan Credit Card",
			Eligibility: json.RawMessage(
				`{"required":[{"field":"farmer","operator":"==","value":true}]}`),
			Embedding: []float64{1, 0},
		},
		{
			SchemeID:   "mahila1",
			SchemeName: "Mahila Udyam Nidhi",
			Eligibility: json.RawMessage(
				`{"required":[{"field":"gender","operator":"==","value":"female"}]}`),
			Embedding: []float64{0.9, 0.1},
		},
	}
}

func setupTestRouter(t *testing.T, schemes []*store.Scheme) (http.Handler, *fakeStore, *catalog.Catalog) {
	t.Helper()
	logger := discardLogger()
	fs := &fakeStore{schemes: schemes}

	cat := catalog.New(fs, logger)
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("catalog load: %v", err)
	}

	entries := cat.All()
	ids := make([]string, len(entries))
	vectors := make([][]float64, len(entries))
	for i, e := range entries {
		ids[i] = e.SchemeID
		vectors[i] = e.Embedding
	}
	searcher := retrieval.NewSearcher(&fakeEmbedder{vector: []float32{1, 0}}, retrieval.NewIndex(ids, vectors))

	mapper := rules.NewFieldMapper(nil)
	eval := rules.NewEvaluator(mapper, 0.5, logger)
	eligibility := scoring.NewEligibilityScorer(eval, scoring.DefaultRuleWeights())
	freshness := scoring.NewFreshnessScorer(730, 0.5)
	ranker, err := ranking.NewRanker(eligibility, freshness, ranking.DefaultBlendWeights(), 2, logger)
	if err != nil {
		t.Fatalf("new ranker: %v", err)
	}
	t.Cleanup(ranker.Release)

	router := NewRouter(fs, cat, searcher, ranker, mapper, nil, RouterConfig{
		AdminToken:    "secret",
		RateLimitRPM:  1000,
		DefaultTopK:   10,
		MaxCandidates: 50,
	}, logger)
	return router, fs, cat
}

func TestRecommend(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	body := bytes.NewBufferString(`{"query":"business loan for women","profile":{"gender":"female"}}`)
	req := httptest.NewRequest("POST", "/api/v1/recommend", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RecommendResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.RequestID)
	assert.Len(t, resp.Results, 2)

	// female profile: the gender-matched scheme outscores the farmer one
	assert.Equal(t, "mahila1", resp.Results[0].SchemeID)
	assert.Equal(t, 1.0, resp.Results[0].R)
	for _, res := range resp.Results {
		assert.GreaterOrEqual(t, res.PercentMatch, 0)
		assert.LessOrEqual(t, res.PercentMatch, 100)
		assert.NotEmpty(t, res.Breakdown.Required)
	}
}

func TestRecommendValidation(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/recommend", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing query", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/recommend", bytes.NewBufferString(`{"profile":{"gender":"female"}}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecommendGenderFilter(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	body := bytes.NewBufferString(`{"query":"loan","profile":{"gender":"male"}}`)
	req := httptest.NewRequest("POST", "/api/v1/recommend", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RecommendResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	// female-bucketed scheme dropped; unbucketed scheme still passes
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, "kisan1", resp.Results[0].SchemeID)
}

func TestRecommendTopK(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	body := bytes.NewBufferString(`{"query":"loan","profile":{"gender":"female"},"top_k":1}`)
	req := httptest.NewRequest("POST", "/api/v1/recommend", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp RecommendResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Results, 1)
}

func TestGetScheme(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/schemes/mahila1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var detail SchemeDetail
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
		assert.Equal(t, "Mahila Udyam Nidhi", detail.SchemeName)
		assert.Equal(t, "female", detail.GenderBucket)
		assert.Len(t, detail.Eligibility.Required, 1)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/schemes/nope", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStatus(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, float64(2), status["schemes"])
}

func TestAdminAuth(t *testing.T) {
	router, _, _ := setupTestRouter(t, testSchemes())

	t.Run("rejected without token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepted with token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer secret")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminReload(t *testing.T) {
	router, fs, cat := setupTestRouter(t, testSchemes())

	fs.schemes = append(fs.schemes, &store.Scheme{
		SchemeID:   "new1",
		SchemeName: "New Scheme",
		Embedding:  []float64{0, 1},
	})

	req := httptest.NewRequest("POST", "/api/v1/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, cat.Size())

	var resp map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "reloaded", resp["status"])
	assert.Equal(t, float64(3), resp["schemes"])
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
