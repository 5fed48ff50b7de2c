package variant

import "testing"

func TestIsValid(t *testing.T) {
	for _, v := range []Variant{Original, Layout, SpaceFold} {
		if !v.IsValid() {
			t.Errorf("%q should be valid", v)
		}
	}
	for _, v := range []Variant{"", "translit", "ORIGINAL"} {
		if v.IsValid() {
			t.Errorf("%q should be invalid", v)
		}
	}
}
