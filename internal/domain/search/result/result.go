// Package result holds raw index hits and final ranked results.
package result

import (
	"github.com/torgcloud/prefiks/internal/domain/query/variant"
)

// Hit is a single result from the external index with its native
// relevance score and the product fields needed for display.
type Hit struct {
	id       string
	score    float64
	fields   map[string]string
	numerics map[string]float64
}

// NewHit creates a raw index hit.
func NewHit(id string, score float64, fields map[string]string, numerics map[string]float64) Hit {
	return Hit{id: id, score: score, fields: fields, numerics: numerics}
}

// ID returns the product identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the index's native relevance score.
func (h *Hit) Score() float64 { return h.score }

// Fields returns the product display fields.
func (h *Hit) Fields() map[string]string { return h.fields }

// Numerics returns the product's numeric fields (per-dimension
// quantities, price, insertion sequence).
func (h *Hit) Numerics() map[string]float64 { return h.numerics }

// Seq returns the catalog insertion sequence used as a deterministic
// tie-break. Hits without a sequence sort after hits with one.
func (h *Hit) Seq() float64 {
	if s, ok := h.numerics["seq"]; ok {
		return s
	}
	return maxSeq
}

const maxSeq = float64(1 << 52)

// Ranked is a deduplicated, finally-scored search result.
type Ranked struct {
	hit     Hit
	score   float64
	matched variant.Variant
}

// NewRanked creates a ranked result.
func NewRanked(hit Hit, score float64, matched variant.Variant) Ranked {
	return Ranked{hit: hit, score: score, matched: matched}
}

// Hit returns the underlying index hit.
func (r *Ranked) Hit() Hit { return r.hit }

// ID returns the product identifier.
func (r *Ranked) ID() string { return r.hit.id }

// Score returns the combined final score.
func (r *Ranked) Score() float64 { return r.score }

// MatchedVariant returns which query variant produced this result.
func (r *Ranked) MatchedVariant() variant.Variant { return r.matched }
