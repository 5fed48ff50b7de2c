package result

import (
	"testing"

	"github.com/torgcloud/prefiks/internal/domain/query/variant"
)

func TestHit_Accessors(t *testing.T) {
	h := NewHit("p1", 2.5,
		map[string]string{"name": "Масло"},
		map[string]float64{"volume_l": 10, "seq": 7},
	)
	if h.ID() != "p1" || h.Score() != 2.5 {
		t.Errorf("hit = %s %f", h.ID(), h.Score())
	}
	if h.Fields()["name"] != "Масло" {
		t.Errorf("fields = %v", h.Fields())
	}
	if h.Seq() != 7 {
		t.Errorf("Seq() = %f", h.Seq())
	}
}

func TestHit_SeqMissingSortsLast(t *testing.T) {
	with := NewHit("a", 1, nil, map[string]float64{"seq": 3})
	without := NewHit("b", 1, nil, nil)
	if !(with.Seq() < without.Seq()) {
		t.Errorf("hit without seq must sort after: %f vs %f", with.Seq(), without.Seq())
	}
}

func TestRanked(t *testing.T) {
	h := NewHit("p1", 2.5, nil, nil)
	r := NewRanked(h, 1.875, variant.Layout)
	if r.ID() != "p1" || r.Score() != 1.875 || r.MatchedVariant() != variant.Layout {
		t.Errorf("ranked = %s %f %s", r.ID(), r.Score(), r.MatchedVariant())
	}
}
