package materialtree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeReorder(t *testing.T) {
	siblings := []string{"A", "B", "C"}

	tests := []struct {
		name        string
		from, to    string
		insertAfter bool
		wantOK      bool
		wantMove    Move
		wantOrder   []string
	}{
		{"first after last", "A", "C", true, true, Move{From: 1, To: 3}, []string{"B", "C", "A"}},
		{"last before first", "C", "A", false, true, Move{From: 3, To: 1}, []string{"C", "A", "B"}},
		{"first before last", "A", "C", false, true, Move{From: 1, To: 2}, []string{"B", "A", "C"}},
		{"middle after last", "B", "C", true, true, Move{From: 2, To: 3}, []string{"A", "C", "B"}},
		{"drop right after predecessor is a no-op", "B", "A", true, false, Move{}, siblings},
		{"drop right before successor is a no-op", "B", "C", false, false, Move{}, siblings},
		{"drop on itself is a no-op", "B", "B", true, false, Move{}, siblings},
		{"unknown target is a no-op", "A", "Z", true, false, Move{}, siblings},
		{"unknown source is a no-op", "Z", "A", false, false, Move{}, siblings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, order, ok := ComputeReorder(siblings, tt.from, tt.to, tt.insertAfter)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if move != tt.wantMove {
				t.Errorf("move = %+v, want %+v", move, tt.wantMove)
			}
			if diff := cmp.Diff(tt.wantOrder, order); diff != "" {
				t.Errorf("order (-want +got):\n%s", diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"A", "B", "C"}, siblings); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestMove_Pair(t *testing.T) {
	if got := (Move{From: 1, To: 3}).Pair(); got != [2]int{1, 3} {
		t.Errorf("Pair() = %v", got)
	}
}

func TestApplyMove_OutOfRange(t *testing.T) {
	_, err := ApplyMove([]string{"A", "B"}, Move{From: 1, To: 3})
	if !errors.Is(err, ErrMoveOutOfRange) {
		t.Errorf("expected ErrMoveOutOfRange, got %v", err)
	}
	_, err = ApplyMove([]string{"A", "B"}, Move{From: 0, To: 1})
	if !errors.Is(err, ErrMoveOutOfRange) {
		t.Errorf("expected ErrMoveOutOfRange, got %v", err)
	}
}

func TestPlanMove_TouchesOnlyTheMovedRange(t *testing.T) {
	siblings := []Sibling{
		{ID: "A", Position: pos(10)},
		{ID: "B", Position: pos(20)},
		{ID: "C", Position: pos(30)},
		{ID: "D", Position: pos(40)},
		{ID: "E", Position: pos(50)},
	}

	updates, err := PlanMove(siblings, Move{From: 4, To: 2})
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}

	want := []PositionUpdate{
		{ID: "D", Position: 20},
		{ID: "B", Position: 30},
		{ID: "C", Position: 40},
	}
	if diff := cmp.Diff(want, updates); diff != "" {
		t.Errorf("updates (-want +got):\n%s", diff)
	}
}

func TestPlanMove_RejectsUnorderedGroup(t *testing.T) {
	siblings := []Sibling{{ID: "A", Position: pos(1)}, {ID: "B"}}
	if _, err := PlanMove(siblings, Move{From: 1, To: 2}); !errors.Is(err, ErrUnordered) {
		t.Errorf("expected ErrUnordered, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Run("ordered group is untouched", func(t *testing.T) {
		siblings := []Sibling{{ID: "A", Position: pos(3)}, {ID: "B", Position: pos(7)}}
		out, updates := Normalize(siblings)
		if updates != nil {
			t.Errorf("expected no updates, got %v", updates)
		}
		if diff := cmp.Diff(siblings, out); diff != "" {
			t.Errorf("siblings changed (-want +got):\n%s", diff)
		}
	})

	t.Run("missing and duplicate positions are renumbered", func(t *testing.T) {
		siblings := []Sibling{
			{ID: "A", Position: pos(1)},
			{ID: "B", Position: pos(1)},
			{ID: "C"},
		}
		out, updates := Normalize(siblings)

		want := []PositionUpdate{{ID: "B", Position: 2}, {ID: "C", Position: 3}}
		if diff := cmp.Diff(want, updates); diff != "" {
			t.Errorf("updates (-want +got):\n%s", diff)
		}
		for i, s := range out {
			if *s.Position != i+1 {
				t.Errorf("out[%d].Position = %d", i, *s.Position)
			}
		}
	})
}

func TestMergeUpdates(t *testing.T) {
	got := MergeUpdates(
		[]PositionUpdate{{ID: "A", Position: 1}, {ID: "B", Position: 2}},
		[]PositionUpdate{{ID: "B", Position: 5}, {ID: "C", Position: 3}},
	)
	want := []PositionUpdate{{ID: "A", Position: 1}, {ID: "B", Position: 5}, {ID: "C", Position: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged (-want +got):\n%s", diff)
	}
}
