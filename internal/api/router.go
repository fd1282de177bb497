package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schemesetu/matchengine/internal/catalog"
	"github.com/schemesetu/matchengine/internal/events"
	"github.com/schemesetu/matchengine/internal/ranking"
	"github.com/schemesetu/matchengine/internal/retrieval"
	"github.com/schemesetu/matchengine/internal/rules"
	"github.com/schemesetu/matchengine/internal/store"
)

// RouterConfig carries the request-handling knobs the router needs
// from the service configuration.
type RouterConfig struct {
	AdminToken    string
	RateLimitRPM  int
	DefaultTopK   int
	MaxCandidates int
}

func NewRouter(s store.Store, c *catalog.Catalog, se *retrieval.Searcher, rk *ranking.Ranker, m *rules.FieldMapper, ev events.Client, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RateLimitRPM))

	recommend := NewRecommendHandler(c, se, rk, ev, cfg.DefaultTopK, cfg.MaxCandidates, logger)
	schemes := NewSchemesHandler(c, se, m)
	admin := NewAdminHandler(s, c, se, ev, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", recommend.Recommend)
		r.Get("/schemes/{id}", schemes.Get)
		r.Get("/status", schemes.Status)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Post("/admin/reload", admin.Reload)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// SetCatalogGauge seeds the catalog size metric after the initial load.
func SetCatalogGauge(n int) {
	catalogSize.Set(float64(n))
}
