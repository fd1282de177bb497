package ranking

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/schemesetu/matchengine/internal/profile"
	"github.com/schemesetu/matchengine/internal/rules"
	"github.com/schemesetu/matchengine/internal/scoring"
)

// Candidate is one scheme handed in by the retrieval stage, together
// with its semantic similarity to the query.
type Candidate struct {
	SchemeID     string
	SchemeName   string
	Eligibility  rules.EligibilityStructured
	LastUpdated  *time.Time
	Semantic     float64
	Description  string
	SourceURL    string
	GenderBucket string
}

// Ranker scores a candidate set against a profile and produces the
// ordered result list. Scoring one scheme never touches state
// belonging to another, so candidates are fanned out across a worker
// pool and joined only for the final sort.
type Ranker struct {
	eligibility *scoring.EligibilityScorer
	freshness   *scoring.FreshnessScorer
	weights     BlendWeights
	pool        *ants.Pool
	logger      *slog.Logger
}

// NewRanker creates a Ranker with a worker pool of poolSize goroutines.
// poolSize < 1 picks a default of NumCPU/2, minimum 1.
func NewRanker(eligibility *scoring.EligibilityScorer, freshness *scoring.FreshnessScorer, weights BlendWeights, poolSize int, logger *slog.Logger) (*Ranker, error) {
	if poolSize < 1 {
		poolSize = runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Ranker{
		eligibility: eligibility,
		freshness:   freshness,
		weights:     weights,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Rank scores every candidate, sorts by final score descending with
// scheme-ID tie-breaking, and truncates to topK. topK larger than the
// candidate set is clamped; topK < 1 returns the full sorted list.
// An empty candidate set yields an empty (non-nil) slice.
func (r *Ranker) Rank(p *profile.Profile, candidates []Candidate, topK int, now time.Time) []SchemeResult {
	results := make([]SchemeResult, len(candidates))

	var wg sync.WaitGroup
	for i := range candidates {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = r.scoreCandidate(p, candidates[i], now)
		}
		if err := r.pool.Submit(task); err != nil {
			// Pool rejected (released or overloaded); score inline.
			task()
		}
	}
	wg.Wait()

	sortResults(results)

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results
}

func (r *Ranker) scoreCandidate(p *profile.Profile, c Candidate, now time.Time) SchemeResult {
	rScore, breakdown := r.eligibility.Score(c.Eligibility, p)
	fScore := r.freshness.Score(c.LastUpdated, now)
	final, percent := r.weights.Blend(rScore, c.Semantic, fScore)

	return SchemeResult{
		SchemeID:     c.SchemeID,
		SchemeName:   c.SchemeName,
		R:            rScore,
		S:            c.Semantic,
		F:            fScore,
		FinalScore:   final,
		PercentMatch: percent,
		Breakdown:    breakdown,
		Description:  c.Description,
		SourceURL:    c.SourceURL,
		GenderBucket: c.GenderBucket,
	}
}

// Release shuts the worker pool down. The Ranker must not be used
// afterwards.
func (r *Ranker) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
