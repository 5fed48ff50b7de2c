package search

import (
	"fmt"
	"unicode/utf8"

	"github.com/torgcloud/prefiks/internal/domain/query/layout"
	"github.com/torgcloud/prefiks/internal/domain/query/token"
	"github.com/torgcloud/prefiks/internal/domain/query/unit"
	"github.com/torgcloud/prefiks/internal/domain/query/variant"
	"github.com/torgcloud/prefiks/internal/domain/search/request"
)

// Space folding limits, matching the behavior for queries whose words
// arrive split by stray spaces ("кар тофель"). Only short Cyrillic
// queries qualify; folding long or Latin queries would glue together
// legitimately separate words.
const (
	spaceFoldMaxRunes = 20
	spaceFoldMinRunes = 3
)

// plan turns a validated query into the structured requests to issue:
// always the original variant, plus the layout-corrected and
// space-folded alternatives when plausible. An empty plan (nil, nil)
// means the query normalized to nothing and the answer is an empty
// result list.
func (s *Service) plan(q *request.Query) ([]request.Request, error) {
	tokens := token.Normalize(q.Raw())
	if len(tokens) == 0 {
		return nil, nil
	}

	text, features := unit.Extract(tokens)

	original, err := request.New(text, features, variant.Original, s.boosts)
	if err != nil {
		return nil, fmt.Errorf("build original request: %w", err)
	}
	requests := []request.Request{original}

	if corrected, ok := s.corrector.Correct(tokens); ok {
		ctext, cfeatures := unit.Extract(corrected)
		req, err := request.New(ctext, cfeatures, variant.Layout, s.boosts)
		if err == nil {
			requests = append(requests, req)
		}
	}

	if folded, ok := spaceFold(text); ok {
		req, err := request.New(folded, features, variant.SpaceFold, s.boosts)
		if err == nil {
			requests = append(requests, req)
		}
	}

	return requests, nil
}

// spaceFold joins a short multi-word Cyrillic query into a single
// prefix token.
func spaceFold(text []token.Token) ([]token.Token, bool) {
	if len(text) < 2 {
		return nil, false
	}
	if layout.DominantScript(text) != layout.ScriptCyrillic {
		return nil, false
	}

	var joined, original string
	for _, t := range text {
		joined += t.Text()
		original += t.Original()
	}
	runes := utf8.RuneCountInString(joined)
	if runes < spaceFoldMinRunes || runes > spaceFoldMaxRunes {
		return nil, false
	}

	return []token.Token{token.New(joined, original, 0)}, true
}
