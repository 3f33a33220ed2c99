package materialtree

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lexlib/internal/domain/models/library"
)

func TestBuild_OrdersSiblingsByPosition(t *testing.T) {
	forest := Build(sampleMaterials(), docID)

	want := []string{"T1", "C2", "C1", "A1", "A2", "T3", "T2", "A3"}
	if diff := cmp.Diff(want, flatIDs(forest)); diff != "" {
		t.Errorf("pre-order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ChildCountAndDepth(t *testing.T) {
	forest := Build(sampleMaterials(), docID)

	depths := map[string]int{}
	counts := map[string]int{}
	for _, row := range Flatten(forest) {
		depths[row.Node.ID] = row.Depth
		counts[row.Node.ID] = row.Node.ChildCount
	}

	wantDepths := map[string]int{"T1": 0, "C1": 1, "A1": 2, "A2": 2, "C2": 1, "T2": 0, "A3": 1, "T3": 0}
	if diff := cmp.Diff(wantDepths, depths); diff != "" {
		t.Errorf("depth mismatch (-want +got):\n%s", diff)
	}

	wantCounts := map[string]int{"T1": 2, "C1": 2, "A1": 0, "A2": 0, "C2": 0, "T2": 1, "A3": 0, "T3": 0}
	if diff := cmp.Diff(wantCounts, counts); diff != "" {
		t.Errorf("child count mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_TiesKeepInputOrder(t *testing.T) {
	materials := []library.Material{
		mat("b", docID, pos(1), library.StatusInProgress),
		mat("x", docID, nil, library.StatusInProgress),
		mat("a", docID, pos(1), library.StatusInProgress),
		mat("y", docID, nil, library.StatusInProgress),
		mat("c", docID, pos(0), library.StatusInProgress),
	}

	got := Build(materials, docID).IDs()
	want := []string{"c", "b", "a", "x", "y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		forest := Build(nil, docID)
		if forest == nil || len(forest) != 0 {
			t.Errorf("expected empty non-nil forest, got %#v", forest)
		}
	})

	t.Run("orphans are left out", func(t *testing.T) {
		materials := []library.Material{
			mat("a", docID, pos(1), library.StatusInProgress),
			mat("lost", "missing-parent", pos(1), library.StatusInProgress),
		}
		if got := Build(materials, docID).Count(); got != 1 {
			t.Errorf("Count() = %d, want 1", got)
		}
	})

	t.Run("duplicate ids are placed once", func(t *testing.T) {
		materials := []library.Material{
			mat("a", docID, pos(1), library.StatusInProgress),
			mat("a", docID, pos(2), library.StatusInProgress),
		}
		if got := Build(materials, docID).Count(); got != 1 {
			t.Errorf("Count() = %d, want 1", got)
		}
	})

	t.Run("leaf children list is empty not nil", func(t *testing.T) {
		forest := Build([]library.Material{mat("a", docID, pos(1), library.StatusInProgress)}, docID)
		if forest[0].Children == nil {
			t.Error("expected empty children slice")
		}
		if !forest[0].IsLeaf() {
			t.Error("expected leaf")
		}
	})
}

func TestIndex_Lookups(t *testing.T) {
	ix := NewIndex(Build(sampleMaterials(), docID), docID)

	if !ix.IsTopLevel("T1") || ix.IsTopLevel("C1") || ix.IsTopLevel("nope") {
		t.Error("IsTopLevel mismatch")
	}
	if parent, _ := ix.ParentID("A1"); parent != "C1" {
		t.Errorf("ParentID(A1) = %q, want C1", parent)
	}
	if parent, _ := ix.ParentID("T2"); parent != docID {
		t.Errorf("ParentID(T2) = %q, want %q", parent, docID)
	}
	if ix.Depth("A2") != 2 || ix.Depth("nope") != -1 {
		t.Error("Depth mismatch")
	}

	if diff := cmp.Diff([]string{"T1", "T3", "T2"}, ix.SiblingIDs("T3")); diff != "" {
		t.Errorf("SiblingIDs(T3) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C2", "C1"}, ix.ChildIDs("T1")); diff != "" {
		t.Errorf("ChildIDs(T1) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C2", "C1", "A1", "A2"}, ix.DescendantIDs("T1")); diff != "" {
		t.Errorf("DescendantIDs(T1) (-want +got):\n%s", diff)
	}
	if ix.SiblingIDs("nope") != nil {
		t.Error("expected nil siblings for unknown id")
	}
}
