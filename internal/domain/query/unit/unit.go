// Package unit extracts quantity+unit expressions from query tokens as
// structured numeric features.
package unit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/torgcloud/prefiks/internal/domain/query/token"
)

// Dimension is the physical dimension a unit measures.
type Dimension string

// Supported dimensions.
const (
	Volume Dimension = "volume"
	Weight Dimension = "weight"
	Count  Dimension = "count"
)

// Symbol is a canonical unit symbol. Every accepted spelling of a unit
// maps to exactly one Symbol.
type Symbol string

// Canonical unit symbols.
const (
	Liters     Symbol = "L"
	Millis     Symbol = "ML"
	Kilograms  Symbol = "KG"
	Grams      Symbol = "G"
	Pieces     Symbol = "PCS"
)

// spellings maps accepted unit spellings (already case-folded) to their
// canonical symbol. Unlisted suffixes are not units.
var spellings = map[string]Symbol{
	"l": Liters, "lt": Liters, "л": Liters,
	"ml": Millis, "мл": Millis,
	"kg": Kilograms, "кг": Kilograms,
	"g": Grams, "г": Grams, "гр": Grams,
	"pcs": Pieces, "шт": Pieces,
}

// Lookup resolves a unit spelling to its canonical symbol.
func Lookup(spelling string) (Symbol, bool) {
	s, ok := spellings[token.Fold(spelling)]
	return s, ok
}

// Dimension returns the dimension the symbol measures.
func (s Symbol) Dimension() Dimension {
	switch s {
	case Liters, Millis:
		return Volume
	case Kilograms, Grams:
		return Weight
	default:
		return Count
	}
}

// Feature is a quantity+unit expression found in a query.
type Feature struct {
	Quantity float64
	Unit     Symbol
	Raw      string
}

// Dimension returns the feature's physical dimension.
func (f Feature) Dimension() Dimension { return f.Unit.Dimension() }

// Index field per dimension. All quantities are converted to the
// field's base unit, so "1.5л" and "1500мл" describe the same product.
const (
	FieldVolumeL  = "volume_l"
	FieldWeightG  = "weight_g"
	FieldCountPCS = "count_pcs"
)

// Field returns the per-dimension index field name and the quantity
// converted to that field's base unit.
func (f Feature) Field() (string, float64) {
	switch f.Unit {
	case Liters:
		return FieldVolumeL, f.Quantity
	case Millis:
		return FieldVolumeL, f.Quantity / 1000
	case Kilograms:
		return FieldWeightG, f.Quantity * 1000
	case Grams:
		return FieldWeightG, f.Quantity
	default:
		return FieldCountPCS, f.Quantity
	}
}

var (
	numberRe     = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
	numberUnitRe = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)(\p{L}+)$`)
)

// Extract scans quantity-shaped tokens and splits them off as numeric
// features. Recognized shapes are "<number><unit>" within one token and
// a bare number token immediately followed by a unit token. A number
// with an unrecognized suffix, or with no unit at all, stays a plain
// text token so product codes are not mistaken for quantities.
func Extract(tokens []token.Token) ([]token.Token, []Feature) {
	var text []token.Token
	var features []Feature

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]

		if m := numberUnitRe.FindStringSubmatch(t.Text()); m != nil {
			if sym, ok := Lookup(m[2]); ok {
				features = append(features, Feature{
					Quantity: parseDecimal(m[1]),
					Unit:     sym,
					Raw:      t.Original(),
				})
				continue
			}
			text = append(text, t)
			continue
		}

		if numberRe.MatchString(t.Text()) && i+1 < len(tokens) {
			if sym, ok := Lookup(tokens[i+1].Text()); ok {
				features = append(features, Feature{
					Quantity: parseDecimal(t.Text()),
					Unit:     sym,
					Raw:      t.Original() + " " + tokens[i+1].Original(),
				})
				i++
				continue
			}
		}

		text = append(text, t)
	}

	return text, features
}

func parseDecimal(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}
