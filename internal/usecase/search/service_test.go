package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/torgcloud/prefiks/internal/domain/query/layout"
	"github.com/torgcloud/prefiks/internal/domain/query/variant"
	"github.com/torgcloud/prefiks/internal/domain/search/request"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
)

// fakeRepo answers per-variant canned hits. Safe for concurrent use:
// the service fans out one call per variant.
type fakeRepo struct {
	mu       sync.Mutex
	hits     map[variant.Variant][]result.Hit
	errs     map[variant.Variant]error
	delay    map[variant.Variant]time.Duration
	requests []request.Request
	limits   []int
}

func (f *fakeRepo) Search(ctx context.Context, req *request.Request, limit int) ([]result.Hit, error) {
	if d := f.delay[req.Source()]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, *req)
	f.limits = append(f.limits, limit)
	f.mu.Unlock()

	if err := f.errs[req.Source()]; err != nil {
		return nil, err
	}
	return f.hits[req.Source()], nil
}

func (f *fakeRepo) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newService(repo Repository, cfg Config) *Service {
	return New(repo, layout.NewCorrector(layout.QwertyJcuken()), cfg)
}

func TestSearch_CyrillicPrefix(t *testing.T) {
	// A short Cyrillic prefix issues exactly one request and surfaces
	// products whose name starts with it.
	repo := &fakeRepo{hits: map[variant.Variant][]result.Hit{
		variant.Original: {
			result.NewHit("p1", 2.0, map[string]string{"name": "масло"}, map[string]float64{"seq": 1}),
			result.NewHit("p2", 1.5, map[string]string{"name": "маргарин"}, map[string]float64{"seq": 2}),
		},
	}}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "ма", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.requestCount() != 1 {
		t.Errorf("issued %d requests, want 1", repo.requestCount())
	}
	if len(ranked) != 2 || ranked[0].ID() != "p1" {
		t.Errorf("ranked = %v", ids(ranked))
	}
}

func TestSearch_CandidateMultiplier(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, Config{CandidateMultiplier: 3})

	if _, err := svc.Search(context.Background(), mustQuery(t, "ма", 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.limits) != 1 || repo.limits[0] != 15 {
		t.Errorf("limits = %v, want [15]", repo.limits)
	}
}

func TestSearch_WrongLayoutSurfacesCorrected(t *testing.T) {
	// "xfq" remaps to "чай": the corrected variant's products must
	// outrank spurious literal matches despite the layout weight < 1.
	repo := &fakeRepo{hits: map[variant.Variant][]result.Hit{
		variant.Original: {
			result.NewHit("xfq-brand", 0.5, map[string]string{"name": "XFQ"}, map[string]float64{"seq": 9}),
		},
		variant.Layout: {
			result.NewHit("чай-черный", 2.0, map[string]string{"name": "чай черный"}, map[string]float64{"seq": 4}),
		},
	}}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "xfq", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.requestCount() != 2 {
		t.Errorf("issued %d requests, want 2", repo.requestCount())
	}
	if len(ranked) != 2 {
		t.Fatalf("ranked = %v", ids(ranked))
	}
	if ranked[0].ID() != "чай-черный" || ranked[0].MatchedVariant() != variant.Layout {
		t.Errorf("first = %s via %s", ranked[0].ID(), ranked[0].MatchedVariant())
	}
}

func TestSearch_NumericBonusRanksExactVolumeFirst(t *testing.T) {
	// Same name, same native score; the 10-liter product wins on the
	// additive bonus while the rest still appear (soft-filter policy).
	repo := &fakeRepo{hits: map[variant.Variant][]result.Hit{
		variant.Original: {
			result.NewHit("масло-1л", 1.0, map[string]string{"name": "масло"}, map[string]float64{"volume_l": 1, "seq": 1}),
			result.NewHit("масло-10л", 1.0, map[string]string{"name": "масло"}, map[string]float64{"volume_l": 10, "seq": 2}),
			result.NewHit("масло-б/о", 1.0, map[string]string{"name": "масло"}, map[string]float64{"seq": 3}),
		},
	}}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "масло 10л", 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("ranked = %v, want all 3", ids(ranked))
	}
	if ranked[0].ID() != "масло-10л" {
		t.Errorf("first = %s, want масло-10л", ranked[0].ID())
	}

	// The request carried the feature, not a "10л" text token.
	req := repo.requests[0]
	if len(req.Tokens()) != 1 || req.Tokens()[0].Text() != "масло" {
		t.Errorf("tokens = %v", req.Tokens())
	}
	if len(req.Features()) != 1 {
		t.Errorf("features = %v", req.Features())
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "  ?! ", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("ranked = %v, want empty", ids(ranked))
	}
	if repo.requestCount() != 0 {
		t.Errorf("issued %d requests, want 0", repo.requestCount())
	}
}

func TestSearch_FailedVariantDegrades(t *testing.T) {
	repo := &fakeRepo{
		hits: map[variant.Variant][]result.Hit{
			variant.Original: {
				result.NewHit("xfq-brand", 0.5, map[string]string{"name": "XFQ"}, nil),
			},
		},
		errs: map[variant.Variant]error{
			variant.Layout: errors.New("index unavailable"),
		},
	}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "xfq", 5))
	if err != nil {
		t.Fatalf("a failed variant must not fail the query: %v", err)
	}
	if len(ranked) != 1 || ranked[0].ID() != "xfq-brand" {
		t.Errorf("ranked = %v, want the original variant's hit", ids(ranked))
	}
}

func TestSearch_AllVariantsFail(t *testing.T) {
	repo := &fakeRepo{errs: map[variant.Variant]error{
		variant.Original: errors.New("index unavailable"),
		variant.Layout:   errors.New("index unavailable"),
	}}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "xfq", 5))
	if err != nil {
		t.Fatalf("total index failure must degrade to empty, got error: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("ranked = %v, want empty", ids(ranked))
	}
}

func TestSearch_SlowVariantTimesOut(t *testing.T) {
	repo := &fakeRepo{
		hits: map[variant.Variant][]result.Hit{
			variant.Original: {
				result.NewHit("p1", 1.0, map[string]string{"name": "XFQ"}, nil),
			},
			variant.Layout: {
				result.NewHit("чай", 2.0, map[string]string{"name": "чай"}, nil),
			},
		},
		delay: map[variant.Variant]time.Duration{
			variant.Layout: 500 * time.Millisecond,
		},
	}
	svc := newService(repo, Config{VariantTimeout: 20 * time.Millisecond})

	start := time.Now()
	ranked, err := svc.Search(context.Background(), mustQuery(t, "xfq", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("search took %v, slow variant must not block", elapsed)
	}
	if len(ranked) != 1 || ranked[0].ID() != "p1" {
		t.Errorf("ranked = %v, want only the fast variant's hit", ids(ranked))
	}
}

func TestSearch_TruncatesToTopK(t *testing.T) {
	var hits []result.Hit
	for i := 0; i < 20; i++ {
		hits = append(hits, result.NewHit(
			string(rune('a'+i)), float64(20-i), map[string]string{"name": "ма"}, nil,
		))
	}
	repo := &fakeRepo{hits: map[variant.Variant][]result.Hit{variant.Original: hits}}
	svc := newService(repo, Config{})

	ranked, err := svc.Search(context.Background(), mustQuery(t, "ма", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 5 {
		t.Errorf("len = %d, want topK 5", len(ranked))
	}
}
