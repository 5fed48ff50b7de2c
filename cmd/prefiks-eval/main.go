// prefiks-eval replays a fixed query set against a running API server
// and reports coverage (share of queries with at least one result) and
// average latency.
//
// Usage:
//
//	prefiks-eval -queries data/prefix_queries.csv -base-url http://localhost:8080
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	prefiks "github.com/torgcloud/prefiks/pkg/sdk"
)

type queryRow struct {
	Query string
	Site  string
	Type  string
	Notes string
}

type evalResult struct {
	row       queryRow
	top       []prefiks.Result
	latencyMS float64
	total     int
	judgement string
}

type metrics struct {
	TotalQueries       int     `json:"total_queries"`
	SuccessfulQueries  int     `json:"successful_queries"`
	QueriesWithResults int     `json:"queries_with_results"`
	CoveragePercent    float64 `json:"coverage_percent"`
	AvgLatencyMS       float64 `json:"avg_latency_ms"`
}

func main() {
	queriesPath := flag.String("queries", "data/prefix_queries.csv", "CSV file with test queries")
	baseURL := flag.String("base-url", "http://localhost:8080", "API server base URL")
	topK := flag.Int("top-k", 3, "results per query")
	output := flag.String("output", "reports/evaluation_results.csv", "per-query results CSV")
	metricsOut := flag.String("metrics", "reports/metrics.json", "aggregated metrics JSON")
	apiKey := flag.String("api-key", "", "API key (optional)")
	flag.Parse()

	rows, err := readQueries(*queriesPath)
	if err != nil {
		log.Fatalf("read queries: %v", err)
	}
	if len(rows) == 0 {
		log.Fatalf("no queries in %s", *queriesPath)
	}

	var opts []prefiks.Option
	if *apiKey != "" {
		opts = append(opts, prefiks.WithAPIKey(*apiKey))
	}
	client := prefiks.New(*baseURL, opts...)

	ctx := context.Background()
	if report, err := client.Health(ctx); err != nil {
		log.Fatalf("health check: %v", err)
	} else if !report.Healthy() {
		log.Printf("warning: server degraded: %v", report.Checks)
	}

	results, m := evaluate(ctx, client, rows, *topK)

	if err := writeResults(*output, results); err != nil {
		log.Fatalf("write results: %v", err)
	}
	if err := writeMetrics(*metricsOut, m); err != nil {
		log.Fatalf("write metrics: %v", err)
	}

	fmt.Printf("queries:        %d\n", m.TotalQueries)
	fmt.Printf("successful:     %d\n", m.SuccessfulQueries)
	fmt.Printf("with results:   %d\n", m.QueriesWithResults)
	fmt.Printf("coverage:       %.2f%%\n", m.CoveragePercent)
	fmt.Printf("avg latency:    %.2f ms\n", m.AvgLatencyMS)
}

func evaluate(ctx context.Context, client *prefiks.Client, rows []queryRow, topK int) ([]evalResult, metrics) {
	results := make([]evalResult, 0, len(rows))
	var m metrics
	var totalLatency float64

	for i, row := range rows {
		log.Printf("[%d/%d] %q", i+1, len(rows), row.Query)

		start := time.Now()
		resp, err := client.Search(ctx, row.Query, topK)
		if err != nil {
			results = append(results, evalResult{
				row:       row,
				latencyMS: float64(time.Since(start).Microseconds()) / 1000,
				judgement: "ERROR: " + err.Error(),
			})
			continue
		}

		m.SuccessfulQueries++
		if resp.Total > 0 {
			m.QueriesWithResults++
		}
		// Server-side latency excludes network overhead.
		totalLatency += resp.LatencyMS

		results = append(results, evalResult{
			row:       row,
			top:       resp.Results,
			latencyMS: resp.LatencyMS,
			total:     resp.Total,
		})
	}

	m.TotalQueries = len(rows)
	if m.TotalQueries > 0 {
		m.CoveragePercent = float64(m.QueriesWithResults) / float64(m.TotalQueries) * 100
	}
	if m.SuccessfulQueries > 0 {
		m.AvgLatencyMS = totalLatency / float64(m.SuccessfulQueries)
	}
	return results, m
}

func readQueries(path string) ([]queryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	get := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	rows := make([]queryRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		q := get(rec, "query")
		if q == "" {
			continue
		}
		rows = append(rows, queryRow{
			Query: q,
			Site:  get(rec, "site"),
			Type:  get(rec, "type"),
			Notes: get(rec, "notes"),
		})
	}
	return rows, nil
}

func writeResults(path string, results []evalResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"query", "site", "type", "notes",
		"top_1", "top_1_score", "top_1_category",
		"top_2", "top_2_score", "top_2_category",
		"top_3", "top_3_score", "top_3_category",
		"latency_ms", "total_results", "judgement",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		rec := []string{res.row.Query, res.row.Site, res.row.Type, res.row.Notes}
		for i := 0; i < 3; i++ {
			if i < len(res.top) {
				rec = append(rec,
					res.top[i].Name,
					strconv.FormatFloat(res.top[i].Score, 'f', 4, 64),
					res.top[i].Category,
				)
			} else {
				rec = append(rec, "", "", "")
			}
		}
		rec = append(rec,
			strconv.FormatFloat(res.latencyMS, 'f', 2, 64),
			strconv.Itoa(res.total),
			res.judgement,
		)
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeMetrics(path string, m metrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
