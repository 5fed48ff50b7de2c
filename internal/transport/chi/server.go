// Package chi exposes the search service over HTTP: a query endpoint,
// a health endpoint, and Prometheus metrics.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/torgcloud/prefiks/internal/domain/search/request"
	"github.com/torgcloud/prefiks/internal/domain/search/result"
	healthuc "github.com/torgcloud/prefiks/internal/usecase/health"
)

// SearchService is the query-serving contract the transport depends on.
type SearchService interface {
	Search(ctx context.Context, q *request.Query) ([]result.Ranked, error)
}

// HealthService reports collaborator availability.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers for the search API.
type Server struct {
	search SearchService
	health HealthService
	logger *zap.Logger

	defaultTopK int
	maxTopK     int
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthService, logger *zap.Logger) *Server {
	return &Server{search: search, health: health, logger: logger}
}

// WithTopKBounds sets the configured default and maximum result count.
// Unset bounds fall back to the request package's built-in limits.
func (s *Server) WithTopKBounds(defaultTopK, maxTopK int) *Server {
	s.defaultTopK = defaultTopK
	s.maxTopK = maxTopK
	return s
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Post("/search", s.handleSearch)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// searchParams is the POST /search request body.
type searchParams struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// resultItem is one product in the search response.
type resultItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Brand      string  `json:"brand,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Weight     string  `json:"weight,omitempty"`
	WeightUnit string  `json:"weight_unit,omitempty"`
	Score      float64 `json:"score"`
	Variant    string  `json:"variant"`
}

// searchResponse is the GET|POST /search response body.
type searchResponse struct {
	Query     string       `json:"query"`
	Results   []resultItem `json:"results"`
	Total     int          `json:"total"`
	LatencyMS float64      `json:"latency_ms"`
}

// handleSearch answers GET|POST /search. A missing query parameter is
// a 400; everything downstream degrades to fewer or zero results with
// a 200, transport failures against the index never surface here.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	raw, topK, ok := s.searchParams(w, r)
	if !ok {
		return
	}

	// Configured bounds first; NewQuery applies the built-in limits on
	// top of them, so a typo'd count is corrected, never rejected.
	if topK <= 0 && s.defaultTopK > 0 {
		topK = s.defaultTopK
	}
	if s.maxTopK > 0 && topK > s.maxTopK {
		topK = s.maxTopK
	}

	q, err := request.NewQuery(raw, topK)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	ranked, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", raw), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	items := make([]resultItem, 0, len(ranked))
	for i := range ranked {
		items = append(items, toResultItem(&ranked[i]))
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:     raw,
		Results:   items,
		Total:     len(items),
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// searchParams reads query and top_k from the URL (GET) or the JSON
// body (POST). Reports false after writing the error response.
func (s *Server) searchParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	var raw string
	var topK int

	if r.Method == http.MethodPost {
		var params searchParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
			return "", 0, false
		}
		raw, topK = params.Query, params.TopK
	} else {
		raw = r.URL.Query().Get("query")
		if v := r.URL.Query().Get("top_k"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_failed", "top_k must be an integer")
				return "", 0, false
			}
			topK = n
		}
	}

	if raw == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query parameter is required")
		return "", 0, false
	}
	return raw, topK, true
}

func toResultItem(r *result.Ranked) resultItem {
	hit := r.Hit()
	fields := hit.Fields()
	item := resultItem{
		ID:         r.ID(),
		Name:       fields["name"],
		Category:   fields["category"],
		Brand:      fields["brand"],
		Weight:     fields["weight"],
		WeightUnit: fields["weight_unit"],
		Score:      r.Score(),
		Variant:    string(r.MatchedVariant()),
	}
	if price, ok := hit.Numerics()["price"]; ok {
		item.Price = price
	}
	return item
}

// healthResponse is the GET /health response body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth answers GET /health with 200 when all collaborators are
// reachable and 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// errorResponse is the error envelope shared by all endpoints.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
