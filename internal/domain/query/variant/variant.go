// Package variant tags the provenance of a query candidate.
package variant

// Variant identifies which token-source a search request was built from.
type Variant string

// Query variant constants.
const (
	// Original is the query as the user typed it.
	Original Variant = "original"
	// Layout is the keyboard-layout-corrected alternative.
	Layout Variant = "layout"
	// SpaceFold is the alternative with inner spaces removed, recovering
	// words the user split while typing ("кар тофель" → "картофель").
	SpaceFold Variant = "spacefold"
)

// IsValid checks if the variant is one of the supported values.
func (v Variant) IsValid() bool {
	return v == Original || v == Layout || v == SpaceFold
}
