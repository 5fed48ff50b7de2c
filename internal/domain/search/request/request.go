// Package request holds the validated incoming query and the
// structured per-variant search requests built from it.
package request

import (
	"fmt"

	"github.com/torgcloud/prefiks/internal/domain"
	"github.com/torgcloud/prefiks/internal/domain/query/token"
	"github.com/torgcloud/prefiks/internal/domain/query/unit"
	"github.com/torgcloud/prefiks/internal/domain/query/variant"
)

// Query parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length in bytes.
	MaxQueryLength = 256
	DefaultTopK    = 5
	MaxTopK        = 50
)

// Query is a validated raw search query. Immutable once created.
type Query struct {
	raw  string
	topK int
}

// NewQuery validates the raw query and clamps topK into [1, MaxTopK].
// An out-of-range topK is corrected, never rejected: a typo'd count
// should not fail the whole query.
func NewQuery(raw string, topK int) (Query, error) {
	if len(raw) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d bytes)", MaxQueryLength)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	return Query{raw: raw, topK: topK}, nil
}

// Raw returns the raw query text as received.
func (q *Query) Raw() string { return q.raw }

// TopK returns the requested result count.
func (q *Query) TopK() int { return q.topK }

// Boost pairs an index field with its query-time weight. Boosts are
// ordered so built queries are byte-for-byte reproducible.
type Boost struct {
	Field  string
	Weight float64
}

// DefaultBoosts mirrors the field weighting of the product index: the
// name field dominates, brand and keywords follow, descriptive text
// trails.
func DefaultBoosts() []Boost {
	return []Boost{
		{Field: "name", Weight: 3.0},
		{Field: "brand", Weight: 2.0},
		{Field: "keywords", Weight: 2.0},
		{Field: "category", Weight: 1.5},
		{Field: "search_text", Weight: 1.5},
		{Field: "description", Weight: 1.0},
	}
}

// Request is one structured search request against the external index,
// built per candidate token-source variant. Ephemeral, never persisted.
type Request struct {
	tokens   []token.Token
	features []unit.Feature
	source   variant.Variant
	boosts   []Boost
}

// New validates and creates a Request. A request with neither tokens
// nor features indicates a caller bug and fails fast.
func New(
	tokens []token.Token,
	features []unit.Feature,
	source variant.Variant,
	boosts []Boost,
) (Request, error) {
	if len(tokens) == 0 && len(features) == 0 {
		return Request{}, domain.ErrEmptyRequest
	}
	if !source.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrInvalidVariant, source)
	}
	if len(boosts) == 0 {
		boosts = DefaultBoosts()
	}
	return Request{tokens: tokens, features: features, source: source, boosts: boosts}, nil
}

// Tokens returns the text tokens to match.
func (r *Request) Tokens() []token.Token { return r.tokens }

// Features returns the numeric features attached as soft boosts.
func (r *Request) Features() []unit.Feature { return r.features }

// Source returns the variant this request was built from.
func (r *Request) Source() variant.Variant { return r.source }

// Boosts returns the ordered per-field weights.
func (r *Request) Boosts() []Boost { return r.boosts }
