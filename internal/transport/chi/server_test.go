package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/torgcloud/prefiks/internal/domain/query/variant"
	"github.com/torgcloud/prefiks/internal/domain/search/request"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
	healthuc "github.com/torgcloud/prefiks/internal/usecase/health"
)

// --- Mocks ---

type mockSearch struct {
	gotRaw  string
	gotTopK int
	ranked  []result.Ranked
	err     error
}

func (m *mockSearch) Search(_ context.Context, q *request.Query) ([]result.Ranked, error) {
	m.gotRaw = q.Raw()
	m.gotTopK = q.TopK()
	return m.ranked, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(search SearchService, health HealthService) http.Handler {
	r := chi.NewRouter()
	NewServer(search, health, zap.NewNop()).Register(r)
	return r
}

func rankedFixture() []result.Ranked {
	butter := result.NewHit("p1", 2.5,
		map[string]string{"name": "масло подсолнечное", "category": "бакалея", "brand": "слобода"},
		map[string]float64{"price": 129.9, "volume_l": 1, "seq": 3},
	)
	tea := result.NewHit("p2", 1.1,
		map[string]string{"name": "масло сливочное"},
		map[string]float64{"seq": 7},
	)
	return []result.Ranked{
		result.NewRanked(butter, 2.5, variant.Original),
		result.NewRanked(tea, 1.1, variant.Original),
	}
}

// --- Tests ---

func TestSearch_Get(t *testing.T) {
	search := &mockSearch{ranked: rankedFixture()}
	router := newTestRouter(search, &mockHealth{})

	req := httptest.NewRequest("GET", "/search?query=масло&top_k=3", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if search.gotRaw != "масло" {
		t.Errorf("service got query %q, want %q", search.gotRaw, "масло")
	}
	if search.gotTopK != 3 {
		t.Errorf("service got topK %d, want 3", search.gotTopK)
	}
	if resp.Query != "масло" {
		t.Errorf("response query = %q", resp.Query)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("total = %d, results = %d, want 2", resp.Total, len(resp.Results))
	}
	if resp.Results[0].ID != "p1" || resp.Results[0].Name != "масло подсолнечное" {
		t.Errorf("first result = %+v", resp.Results[0])
	}
	if resp.Results[0].Price != 129.9 {
		t.Errorf("price = %g, want 129.9", resp.Results[0].Price)
	}
	if resp.Results[0].Variant != "original" {
		t.Errorf("variant = %q", resp.Results[0].Variant)
	}
	if resp.LatencyMS < 0 {
		t.Errorf("latency_ms = %g", resp.LatencyMS)
	}
}

func TestSearch_Post(t *testing.T) {
	search := &mockSearch{ranked: nil}
	router := newTestRouter(search, &mockHealth{})

	body := strings.NewReader(`{"query": "xfq", "top_k": 5}`)
	req := httptest.NewRequest("POST", "/search", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if search.gotRaw != "xfq" || search.gotTopK != 5 {
		t.Errorf("service got (%q, %d), want (xfq, 5)", search.gotRaw, search.gotTopK)
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 0 || resp.Results == nil {
		t.Errorf("zero hits must serialize as an empty list, got %+v", resp)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	router := newTestRouter(&mockSearch{}, &mockHealth{})

	req := httptest.NewRequest("GET", "/search", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearch_BadTopK(t *testing.T) {
	router := newTestRouter(&mockSearch{}, &mockHealth{})

	req := httptest.NewRequest("GET", "/search?query=чай&top_k=abc", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearch_NegativeTopK_Clamped(t *testing.T) {
	// An out-of-range count is corrected, never rejected.
	search := &mockSearch{}
	router := newTestRouter(search, &mockHealth{})

	req := httptest.NewRequest("GET", "/search?query=чай&top_k=-1", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if search.gotTopK != request.DefaultTopK {
		t.Errorf("topK = %d, want default %d", search.gotTopK, request.DefaultTopK)
	}
}

func TestSearch_TopKBounds(t *testing.T) {
	search := &mockSearch{}
	r := chi.NewRouter()
	NewServer(search, &mockHealth{}, zap.NewNop()).WithTopKBounds(3, 10).Register(r)

	req := httptest.NewRequest("GET", "/search?query=чай", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if search.gotTopK != 3 {
		t.Errorf("default topK = %d, want 3", search.gotTopK)
	}

	req = httptest.NewRequest("GET", "/search?query=чай&top_k=99", http.NoBody)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if search.gotTopK != 10 {
		t.Errorf("capped topK = %d, want 10", search.gotTopK)
	}
}

func TestSearch_ServiceError_500(t *testing.T) {
	search := &mockSearch{err: errors.New("boom")}
	router := newTestRouter(search, &mockHealth{})

	req := httptest.NewRequest("GET", "/search?query=чай", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestHealth_OK(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"index": healthuc.CheckOK},
	}}
	router := newTestRouter(&mockSearch{}, health)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["index"] != "ok" {
		t.Errorf("unexpected health body: %+v", resp)
	}
}

func TestHealth_Degraded_503(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"index": healthuc.CheckError},
	}}
	router := newTestRouter(&mockSearch{}, health)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
