package core

import (
	"testing"

	"github.com/rushteam/reviewkit/pkg/utils"
)

func TestItem_PutLabel(t *testing.T) {
	it := NewItem("A")
	it.PutLabel(utils.LabelNeighbor, utils.Label{Value: "u2", Source: "recall"})
	it.PutLabel(utils.LabelNeighbor, utils.Label{Value: "u3", Source: "recall"})

	if got, want := it.Label(utils.LabelNeighbor), "u2|u3"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	if got := it.Label("missing"); got != "" {
		t.Errorf("Label(missing) = %q, want empty", got)
	}
}

func TestMergeDuplicates(t *testing.T) {
	a1 := NewItem("A")
	a1.PutLabel(utils.LabelNeighbor, utils.Label{Value: "u2", Source: "recall"})
	a2 := NewItem("A")
	a2.PutLabel(utils.LabelNeighbor, utils.Label{Value: "u3", Source: "recall"})

	got := MergeDuplicates([]*Item{a1, nil, NewItem("B"), a2})
	if ids := ItemIDs(got); len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Fatalf("MergeDuplicates() = %v, want [A B]", ids)
	}
	if got[0] != a1 {
		t.Error("first occurrence should be kept")
	}
	if l := got[0].Label(utils.LabelNeighbor); l != "u2|u3" {
		t.Errorf("merged label = %q, want u2|u3", l)
	}
}

func TestItemIDs(t *testing.T) {
	items := []*Item{NewItem("B"), nil, NewItem("A")}
	got := ItemIDs(items)
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Errorf("ItemIDs() = %v, want [B A]", got)
	}
}

func TestRecommendContext_Labels(t *testing.T) {
	rctx := &RecommendContext{UserID: "u1"}
	if _, ok := rctx.GetLabel(utils.LabelTier); ok {
		t.Fatal("empty context should have no labels")
	}
	rctx.PutLabel(utils.LabelTier, utils.Label{Value: "recall.matrix", Source: "recall"})
	lbl, ok := rctx.GetLabel(utils.LabelTier)
	if !ok || lbl.Value != "recall.matrix" {
		t.Errorf("GetLabel() = %+v, %v", lbl, ok)
	}
}
