package search

import (
	"math"
	"sort"

	"github.com/torgcloud/prefiks/internal/domain/query/unit"
	"github.com/torgcloud/prefiks/internal/domain/query/variant"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
)

// variantHits is one variant's outcome of the fan-out. A failed or
// timed-out variant arrives with nil hits.
type variantHits struct {
	source   variant.Variant
	features []unit.Feature
	hits     []result.Hit
}

// mergeVariants deduplicates hits across query variants and ranks them.
//
// Computed score = native score × variant weight + numericBonus per
// satisfied numeric feature. When the same product appears under more
// than one variant, the occurrence with the higher computed score wins;
// at equal score the original variant wins. Final order is descending
// score with catalog insertion order (then product id) as the
// deterministic tie-break, truncated to topK.
func mergeVariants(
	batches []variantHits,
	weights map[variant.Variant]float64,
	numericBonus, tolerance float64,
	topK int,
) []result.Ranked {
	// Original first so it wins equal-score dedup ties.
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].source == variant.Original && batches[j].source != variant.Original
	})

	merged := make(map[string]result.Ranked)
	for _, batch := range batches {
		w, ok := weights[batch.source]
		if !ok {
			w = 1.0
		}
		for _, hit := range batch.hits {
			score := hit.Score()*w +
				numericBonus*float64(satisfiedFeatures(batch.features, &hit, tolerance))
			existing, seen := merged[hit.ID()]
			if seen && existing.Score() >= score {
				continue
			}
			merged[hit.ID()] = result.NewRanked(hit, score, batch.source)
		}
	}

	ranked := make([]result.Ranked, 0, len(merged))
	for _, r := range merged {
		ranked = append(ranked, r)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score() != ranked[j].Score() {
			return ranked[i].Score() > ranked[j].Score()
		}
		hi, hj := ranked[i].Hit(), ranked[j].Hit()
		if hi.Seq() != hj.Seq() {
			return hi.Seq() < hj.Seq()
		}
		return ranked[i].ID() < ranked[j].ID()
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// satisfiedFeatures counts the request's numeric features that the hit
// matches within the relative tolerance.
func satisfiedFeatures(features []unit.Feature, hit *result.Hit, tolerance float64) int {
	n := 0
	for _, f := range features {
		field, want := f.Field()
		got, ok := hit.Numerics()[field]
		if !ok {
			continue
		}
		if math.Abs(got-want) <= tolerance*math.Abs(want) {
			n++
		}
	}
	return n
}
