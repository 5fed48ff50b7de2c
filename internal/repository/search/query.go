package search

import (
	"fmt"
	"strings"

	"github.com/torgcloud/prefiks/internal/domain/search/request"
)

// buildQuery translates a structured request into FT.SEARCH query
// syntax: each boosted field gets a clause requiring every token as a
// prefix, clauses are OR-ed across fields, and each numeric feature is
// appended as an optional (~) range so it boosts matching products
// without excluding the rest.
//
// Example for tokens [масло] and a 10 L feature (tolerance 0.2):
//
//	((@name:(масло*)) => { $weight: 3.0 } | (@brand:(масло*)) => { $weight: 2.0 }) ~@volume_l:[8 12]
func buildQuery(req *request.Request, tolerance float64) string {
	var b strings.Builder

	if prefixes := tokenPrefixes(req); prefixes != "" {
		fieldClauses := make([]string, 0, len(req.Boosts()))
		for _, boost := range req.Boosts() {
			fieldClauses = append(fieldClauses, fmt.Sprintf(
				"(@%s:(%s)) => { $weight: %g }", boost.Field, prefixes, boost.Weight,
			))
		}
		b.WriteString("(")
		b.WriteString(strings.Join(fieldClauses, " | "))
		b.WriteString(")")
	}

	for _, f := range req.Features() {
		field, value := f.Field()
		lo := value * (1 - tolerance)
		hi := value * (1 + tolerance)
		clause := fmt.Sprintf("@%s:[%g %g]", field, lo, hi)
		if b.Len() > 0 {
			// Soft boost: with text clauses present the range must not
			// exclude products lacking an exact quantity match.
			b.WriteString(" ~")
			b.WriteString(clause)
		} else {
			// Feature-only query: the range is the whole request.
			b.WriteString(clause)
		}
	}

	return b.String()
}

// tokenPrefixes renders the request tokens as escaped prefix terms.
func tokenPrefixes(req *request.Request) string {
	tokens := req.Tokens()
	if len(tokens) == 0 {
		return ""
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = escapeTerm(t.Text()) + "*"
	}
	return strings.Join(terms, " ")
}

// escapeTerm escapes FT query-language metacharacters inside a term.
var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)

func escapeTerm(s string) string {
	return termEscaper.Replace(s)
}
