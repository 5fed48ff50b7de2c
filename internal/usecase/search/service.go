// Package search orchestrates query understanding: normalization,
// layout correction, numeric feature extraction, per-variant fan-out
// against the external index, and merged ranking.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/torgcloud/prefiks/internal/logger"
	"github.com/torgcloud/prefiks/internal/metrics"

	"github.com/torgcloud/prefiks/internal/domain/query/variant"
	"github.com/torgcloud/prefiks/internal/domain/search/request"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
)

// Config holds the ranking and fan-out tuning knobs.
type Config struct {
	// Boosts are the per-field query weights; nil means defaults.
	Boosts []request.Boost
	// VariantWeights scale each variant's native scores; the original
	// variant weighs 1.0, alternatives carry less confidence.
	VariantWeights map[variant.Variant]float64
	// NumericBonus is added per satisfied numeric feature.
	NumericBonus float64
	// Tolerance is the relative width of a satisfied numeric match.
	Tolerance float64
	// CandidateMultiplier: each variant fetches topK×multiplier hits so
	// dedup and re-ranking have slack.
	CandidateMultiplier int
	// VariantTimeout bounds each external call; a slow variant degrades
	// to zero hits instead of blocking the query.
	VariantTimeout time.Duration
}

// DefaultConfig returns the tuning used when the config file leaves the
// search section empty.
func DefaultConfig() Config {
	return Config{
		VariantWeights: map[variant.Variant]float64{
			variant.Original:  1.0,
			variant.SpaceFold: 0.9,
			variant.Layout:    0.75,
		},
		NumericBonus:        0.15,
		Tolerance:           0.2,
		CandidateMultiplier: 3,
		VariantTimeout:      300 * time.Millisecond,
	}
}

// Service answers prefix queries against the product index.
type Service struct {
	repo      Repository
	corrector Corrector

	boosts         []request.Boost
	weights        map[variant.Variant]float64
	numericBonus   float64
	tolerance      float64
	multiplier     int
	variantTimeout time.Duration
}

// New creates a search service. Zero-valued config fields fall back to
// DefaultConfig.
func New(repo Repository, corrector Corrector, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.VariantWeights == nil {
		cfg.VariantWeights = def.VariantWeights
	}
	if cfg.NumericBonus == 0 {
		cfg.NumericBonus = def.NumericBonus
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = def.CandidateMultiplier
	}
	if cfg.VariantTimeout <= 0 {
		cfg.VariantTimeout = def.VariantTimeout
	}
	return &Service{
		repo:           repo,
		corrector:      corrector,
		boosts:         cfg.Boosts,
		weights:        cfg.VariantWeights,
		numericBonus:   cfg.NumericBonus,
		tolerance:      cfg.Tolerance,
		multiplier:     cfg.CandidateMultiplier,
		variantTimeout: cfg.VariantTimeout,
	}
}

// Search answers one query: plan variants, fan out one index call per
// variant, join, merge, rank, truncate. A failed variant degrades to
// zero hits; a query where every variant fails returns an empty list,
// because absence of results is a valid outcome and the health endpoint
// carries infrastructure signals separately.
func (s *Service) Search(ctx context.Context, q *request.Query) ([]result.Ranked, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	requests, err := s.plan(q)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		metrics.SearchQueriesTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return nil, nil
	}

	batches := s.fanOut(ctx, requests, q.TopK()*s.multiplier)
	ranked := mergeVariants(batches, s.weights, s.numericBonus, s.tolerance, q.TopK())

	outcome := metrics.OutcomeHit
	if len(ranked) == 0 {
		outcome = metrics.OutcomeZero
	}
	metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()

	return ranked, nil
}

// fanOut issues every variant request concurrently and joins before
// ranking. Each call runs under its own timeout derived from the
// caller's context, so client disconnects abandon in-flight calls while
// a slow alternative variant cannot hold the primary result hostage.
func (s *Service) fanOut(ctx context.Context, requests []request.Request, limit int) []variantHits {
	ch := make(chan variantHits, len(requests))

	for i := range requests {
		req := &requests[i]
		go func() {
			vctx, cancel := context.WithTimeout(ctx, s.variantTimeout)
			defer cancel()

			hits, err := s.repo.Search(vctx, req, limit)
			if err != nil {
				logpkg.FromContext(ctx).Warn("variant search failed",
					zap.String("variant", string(req.Source())),
					zap.Error(err),
				)
				metrics.VariantFailuresTotal.WithLabelValues(string(req.Source())).Inc()
				hits = nil
			}
			ch <- variantHits{source: req.Source(), features: req.Features(), hits: hits}
		}()
	}

	batches := make([]variantHits, 0, len(requests))
	for range requests {
		batches = append(batches, <-ch)
	}
	return batches
}
