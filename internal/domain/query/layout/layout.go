// Package layout detects queries typed on the wrong keyboard layout and
// produces a corrected alternative token sequence.
package layout

import (
	"unicode"

	"github.com/torgcloud/prefiks/internal/domain/query/token"
)

// DominantScriptShare is the minimum share of letters that must belong
// to one script before a remap is attempted. Tunable; the source
// heuristic only requires the input to be predominantly one script.
const DominantScriptShare = 0.8

// Script identifies the writing system a query is dominated by.
type Script int

// Supported scripts.
const (
	ScriptMixed Script = iota
	ScriptLatin
	ScriptCyrillic
)

// Table is an immutable bijective character map keyed by physical key
// position, relating Latin QWERTY characters to the Cyrillic ЙЦУКЕН
// characters on the same keys.
type Table struct {
	latinToCyr map[rune]rune
	cyrToLatin map[rune]rune
}

// qwertyJcuken lists each physical key as a (latin, cyrillic) pair.
var qwertyJcuken = [][2]rune{
	{'q', 'й'}, {'w', 'ц'}, {'e', 'у'}, {'r', 'к'}, {'t', 'е'},
	{'y', 'н'}, {'u', 'г'}, {'i', 'ш'}, {'o', 'щ'}, {'p', 'з'},
	{'[', 'х'}, {']', 'ъ'},
	{'a', 'ф'}, {'s', 'ы'}, {'d', 'в'}, {'f', 'а'}, {'g', 'п'},
	{'h', 'р'}, {'j', 'о'}, {'k', 'л'}, {'l', 'д'}, {';', 'ж'},
	{'\'', 'э'},
	{'z', 'я'}, {'x', 'ч'}, {'c', 'с'}, {'v', 'м'}, {'b', 'и'},
	{'n', 'т'}, {'m', 'ь'}, {',', 'б'}, {'.', 'ю'},
}

// QwertyJcuken builds the standard Latin QWERTY ↔ Cyrillic ЙЦУКЕН table.
func QwertyJcuken() *Table {
	t := &Table{
		latinToCyr: make(map[rune]rune, len(qwertyJcuken)),
		cyrToLatin: make(map[rune]rune, len(qwertyJcuken)),
	}
	for _, pair := range qwertyJcuken {
		t.latinToCyr[pair[0]] = pair[1]
		t.cyrToLatin[pair[1]] = pair[0]
	}
	return t
}

// ToCyrillic remaps Latin characters to the Cyrillic characters on the
// same physical keys. Unmapped characters pass through unchanged.
func (t *Table) ToCyrillic(s string) string {
	return remap(s, t.latinToCyr)
}

// ToLatin is the inverse of ToCyrillic.
func (t *Table) ToLatin(s string) string {
	return remap(s, t.cyrToLatin)
}

func remap(s string, m map[rune]rune) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if mapped, ok := m[r]; ok {
			out = append(out, mapped)
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

// commonLatinWords are short English words that legitimately appear in
// product queries and must never be treated as wrong-layout input.
var commonLatinWords = map[string]struct{}{
	"a": {}, "an": {}, "at": {}, "as": {}, "am": {}, "be": {}, "by": {},
	"do": {}, "go": {}, "he": {}, "if": {}, "in": {}, "is": {}, "it": {},
	"me": {}, "my": {}, "no": {}, "of": {}, "on": {}, "or": {}, "so": {},
	"to": {}, "up": {}, "us": {}, "we": {}, "pr": {}, "ma": {},
}

// Corrector produces layout-corrected query candidates. The catalog's
// primary script is Cyrillic, so correction only fires for queries
// dominated by Latin letters: a Cyrillic word typed with a Latin layout
// active is the common failure, while the inverse almost never occurs
// in practice and blind remapping of Cyrillic queries would pollute the
// candidate set.
type Corrector struct {
	table *Table
}

// NewCorrector creates a Corrector over the given key-position table.
func NewCorrector(table *Table) *Corrector {
	return &Corrector{table: table}
}

// Correct remaps the tokens through the key-position table and reports
// whether the result is a plausible alternative. The remap is accepted
// only when the source tokens are predominantly Latin, the result
// contains at least one Cyrillic token, and the remapped text survives
// normalization. The candidate supplements the original tokens, it
// never replaces them.
func (c *Corrector) Correct(tokens []token.Token) ([]token.Token, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	if DominantScript(tokens) != ScriptLatin {
		return nil, false
	}
	if len(tokens) == 1 {
		if _, stop := commonLatinWords[tokens[0].Text()]; stop {
			return nil, false
		}
	}

	remapped := make([]token.Token, 0, len(tokens))
	sawCyrillic := false
	for _, t := range tokens {
		mapped := c.table.ToCyrillic(t.Text())
		normalized := token.Normalize(mapped)
		for _, nt := range normalized {
			if hasScript(nt.Text(), unicode.Cyrillic) {
				sawCyrillic = true
			}
			remapped = append(remapped, token.New(nt.Text(), t.Original(), len(remapped)))
		}
	}
	if len(remapped) == 0 || !sawCyrillic {
		return nil, false
	}
	return remapped, true
}

// DominantScript classifies the token sequence by the share of its
// letters belonging to one script. Digits and punctuation are ignored.
func DominantScript(tokens []token.Token) Script {
	var latin, cyrillic, total int
	for _, t := range tokens {
		for _, r := range t.Text() {
			if !unicode.IsLetter(r) {
				continue
			}
			total++
			switch {
			case unicode.Is(unicode.Latin, r):
				latin++
			case unicode.Is(unicode.Cyrillic, r):
				cyrillic++
			}
		}
	}
	if total == 0 {
		return ScriptMixed
	}
	share := func(n int) float64 { return float64(n) / float64(total) }
	switch {
	case share(latin) >= DominantScriptShare:
		return ScriptLatin
	case share(cyrillic) >= DominantScriptShare:
		return ScriptCyrillic
	default:
		return ScriptMixed
	}
}

func hasScript(s string, rt *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}
