// Package catalog parses the XML product catalog and shapes products
// into the field maps stored in the search index.
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/torgcloud/prefiks/internal/domain/query/token"
	"github.com/torgcloud/prefiks/internal/domain/query/unit"
)

// Product is one catalog entry.
type Product struct {
	ID          string
	Name        string
	Category    string
	Brand       string
	Weight      string
	WeightUnit  string
	PackageSize string
	Keywords    string
	Description string
	Price       float64
	ImageURL    string
}

type xmlWeight struct {
	Value string `xml:",chardata"`
	Unit  string `xml:"unit,attr"`
}

type xmlProduct struct {
	ID          string    `xml:"id,attr"`
	Name        string    `xml:"name"`
	Category    string    `xml:"category"`
	Brand       string    `xml:"brand"`
	Weight      xmlWeight `xml:"weight"`
	PackageSize string    `xml:"package_size"`
	Keywords    string    `xml:"keywords"`
	Description string    `xml:"description"`
	Price       string    `xml:"price"`
	ImageURL    string    `xml:"image_url"`
}

type xmlCatalog struct {
	Products []xmlProduct `xml:"product"`
}

// ParseXML reads the product catalog. Products without an id or a name
// are skipped, a malformed price parses as zero.
func ParseXML(r io.Reader) ([]Product, error) {
	var doc xmlCatalog
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse catalog xml: %w", err)
	}

	products := make([]Product, 0, len(doc.Products))
	for _, xp := range doc.Products {
		p := Product{
			ID:          strings.TrimSpace(xp.ID),
			Name:        strings.TrimSpace(xp.Name),
			Category:    strings.TrimSpace(xp.Category),
			Brand:       strings.TrimSpace(xp.Brand),
			Weight:      strings.TrimSpace(xp.Weight.Value),
			WeightUnit:  strings.TrimSpace(xp.Weight.Unit),
			PackageSize: strings.TrimSpace(xp.PackageSize),
			Keywords:    strings.TrimSpace(xp.Keywords),
			Description: strings.TrimSpace(xp.Description),
			ImageURL:    strings.TrimSpace(xp.ImageURL),
		}
		if p.ID == "" || p.Name == "" {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(xp.Price), 64); err == nil {
			p.Price = v
		}
		products = append(products, p)
	}
	return products, nil
}

// Fields shapes the product into the hash written to the index. seq is
// the catalog insertion sequence used as the ranking tie-break.
func (p *Product) Fields(seq int) map[string]string {
	fields := map[string]string{
		"id":          p.ID,
		"name":        p.Name,
		"category":    p.Category,
		"brand":       p.Brand,
		"weight":      p.Weight,
		"weight_unit": p.WeightUnit,
		"keywords":    p.Keywords,
		"description": p.Description,
		"price":       strconv.FormatFloat(p.Price, 'f', -1, 64),
		"image_url":   p.ImageURL,
		"search_text": p.searchText(),
		"seq":         strconv.Itoa(seq),
	}

	// Per-dimension quantity in the dimension's base unit, so a "10л"
	// query feature compares against volume_l directly.
	if field, value, ok := p.quantity(); ok {
		fields[field] = strconv.FormatFloat(value, 'f', -1, 64)
	}
	if n, err := strconv.ParseFloat(p.PackageSize, 64); err == nil && n > 0 {
		fields[unit.FieldCountPCS] = strconv.FormatFloat(n, 'f', -1, 64)
	}

	return fields
}

// quantity converts the weight element into the per-dimension index
// field. A product weighed in liters lands in volume_l, one weighed in
// grams in weight_g. An unrecognized unit contributes no field.
func (p *Product) quantity() (string, float64, bool) {
	if p.Weight == "" || p.WeightUnit == "" {
		return "", 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(p.Weight, ",", "."), 64)
	if err != nil || value <= 0 {
		return "", 0, false
	}
	sym, ok := unit.Lookup(p.WeightUnit)
	if !ok {
		return "", 0, false
	}
	f := unit.Feature{Quantity: value, Unit: sym}
	field, base := f.Field()
	return field, base, true
}

// searchText is the catch-all lowercase text field combining every
// searchable attribute.
func (p *Product) searchText() string {
	parts := []string{p.Name, p.Category, p.Brand, p.Keywords, p.Description}
	nonEmpty := parts[:0]
	for _, s := range parts {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return token.Fold(strings.Join(nonEmpty, " "))
}
