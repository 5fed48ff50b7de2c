package prefiks

import "fmt"

// Result is one ranked product match.
type Result struct {
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

// SearchResponse is the answer to one query.
type SearchResponse struct {
	Query     string   `json:"query"`
	Results   []Result `json:"results"`
	Total     int      `json:"total"`
	LatencyMS float64  `json:"latency_ms"`
}

// HealthReport is the server's health summary.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether every collaborator check passed.
func (h *HealthReport) Healthy() bool { return h.Status == "ok" }

// APIError is a non-200 answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d, code %s: %s", e.Status, e.Code, e.Message)
}
