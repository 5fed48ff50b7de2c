// Package search translates structured search requests into index
// queries and raw index hits into domain results.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/torgcloud/prefiks/internal/db"
	"github.com/torgcloud/prefiks/internal/domain/search/request"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
)

// store is the consumer interface for search operations.
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// displayFields are the product fields returned with every hit.
var displayFields = []string{
	"id", "name", "category", "brand", "keywords",
	"weight", "weight_unit", "price",
	"volume_l", "weight_g", "count_pcs", "seq",
}

// Repo executes structured requests against the FT index.
type Repo struct {
	store     store
	index     string
	keyPrefix string
	tolerance float64
}

// New creates a search repository. tolerance is the relative width of
// the soft numeric range attached per feature (0.2 = ±20%).
func New(s store, index, keyPrefix string, tolerance float64) *Repo {
	return &Repo{store: s, index: index, keyPrefix: keyPrefix, tolerance: tolerance}
}

// Search runs one structured request and returns up to limit raw hits
// in the index's relevance order.
func (r *Repo) Search(ctx context.Context, req *request.Request, limit int) ([]result.Hit, error) {
	q := &db.TextQuery{
		IndexName:    r.index,
		Query:        buildQuery(req, r.tolerance),
		TopK:         limit,
		ReturnFields: displayFields,
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.index, err)
	}

	return r.parseHits(sr), nil
}

func (r *Repo) parseHits(sr *db.SearchResult) []result.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix)
		hits = append(hits, parseEntry(id, entry))
	}
	return hits
}

// numericFields splits off the fields carrying quantities; everything
// else stays a display string.
var numericFields = map[string]bool{
	"volume_l": true, "weight_g": true, "count_pcs": true,
	"price": true, "seq": true,
}

func parseEntry(id string, entry db.SearchEntry) result.Hit {
	fields := make(map[string]string)
	numerics := make(map[string]float64)

	for k, v := range entry.Fields {
		if numericFields[k] {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			}
			continue
		}
		fields[k] = v
	}

	if fid, ok := fields["id"]; ok && fid != "" {
		id = fid
	}

	return result.NewHit(id, entry.Score, fields, numerics)
}
