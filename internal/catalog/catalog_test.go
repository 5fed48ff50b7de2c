package catalog

import (
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<catalog>
  <product id="p1">
    <name>Масло подсолнечное</name>
    <category>Бакалея</category>
    <brand>Слобода</brand>
    <weight unit="л">10</weight>
    <package_size>1</package_size>
    <keywords>масло растительное</keywords>
    <description>Рафинированное масло</description>
    <price>129.90</price>
    <image_url>https://example.com/p1.jpg</image_url>
  </product>
  <product id="p2">
    <name>Гречка</name>
    <category>Крупы</category>
    <weight unit="кг">0,9</weight>
    <price>89</price>
  </product>
  <product id="">
    <name>Без идентификатора</name>
  </product>
  <product id="p4">
    <name></name>
  </product>
</catalog>`

func TestParseXML(t *testing.T) {
	products, err := ParseXML(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// p3 has no id, p4 no name; both skipped.
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}

	p := products[0]
	if p.ID != "p1" || p.Name != "Масло подсолнечное" {
		t.Errorf("first product = %+v", p)
	}
	if p.Brand != "Слобода" || p.WeightUnit != "л" || p.Weight != "10" {
		t.Errorf("first product fields = %+v", p)
	}
	if p.Price != 129.90 {
		t.Errorf("price = %g, want 129.90", p.Price)
	}

	if products[1].ID != "p2" || products[1].Brand != "" {
		t.Errorf("second product = %+v", products[1])
	}
}

func TestParseXML_Malformed(t *testing.T) {
	_, err := ParseXML(strings.NewReader("<catalog><product"))
	if err == nil {
		t.Fatal("expected error for malformed xml")
	}
}

func TestFields_VolumeProduct(t *testing.T) {
	products, err := ParseXML(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := products[0].Fields(7)

	if fields["name"] != "Масло подсолнечное" {
		t.Errorf("name = %q", fields["name"])
	}
	if fields["seq"] != "7" {
		t.Errorf("seq = %q, want 7", fields["seq"])
	}
	// "л" is a volume unit: the quantity lands in volume_l, not weight_g.
	if fields["volume_l"] != "10" {
		t.Errorf("volume_l = %q, want 10", fields["volume_l"])
	}
	if _, ok := fields["weight_g"]; ok {
		t.Error("weight_g must be absent for a volume product")
	}
	if fields["count_pcs"] != "1" {
		t.Errorf("count_pcs = %q, want 1", fields["count_pcs"])
	}
	if fields["price"] != "129.9" {
		t.Errorf("price = %q", fields["price"])
	}

	st := fields["search_text"]
	for _, want := range []string{"масло подсолнечное", "бакалея", "слобода", "рафинированное"} {
		if !strings.Contains(st, want) {
			t.Errorf("search_text %q missing %q", st, want)
		}
	}
}

func TestFields_WeightWithCommaDecimal(t *testing.T) {
	products, err := ParseXML(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := products[1].Fields(1)

	// 0,9 кг parses with the comma decimal separator and converts to grams.
	if fields["weight_g"] != "900" {
		t.Errorf("weight_g = %q, want 900", fields["weight_g"])
	}
	if _, ok := fields["volume_l"]; ok {
		t.Error("volume_l must be absent for a weight product")
	}
}

func TestFields_UnrecognizedUnit(t *testing.T) {
	p := Product{ID: "x", Name: "Сок", Weight: "5", WeightUnit: "бут"}
	fields := p.Fields(1)

	for _, f := range []string{"volume_l", "weight_g"} {
		if _, ok := fields[f]; ok {
			t.Errorf("%s must be absent for an unrecognized unit", f)
		}
	}
	// The raw weight survives as display text.
	if fields["weight"] != "5" || fields["weight_unit"] != "бут" {
		t.Errorf("raw weight fields = %q %q", fields["weight"], fields["weight_unit"])
	}
}
