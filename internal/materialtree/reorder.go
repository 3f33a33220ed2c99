package materialtree

import (
	"errors"
	"fmt"
)

// ErrMoveOutOfRange is returned when a move references a rank outside the sibling group
var ErrMoveOutOfRange = errors.New("move out of range")

// Move is a 1-based rank change within one sibling group
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Pair returns the move as the [oldPosition, newPosition] pair sent to the backend
func (m Move) Pair() [2]int {
	return [2]int{m.From, m.To}
}

// ComputeReorder computes where fromID lands when dropped on toID, before it or
// after it when insertAfter is set. siblingIDs is the current order of the group.
//
// ok is false, and nothing should be sent, when either ID is missing from the
// group or when the drop leaves fromID where it was.
func ComputeReorder(siblingIDs []string, fromID, toID string, insertAfter bool) (move Move, order []string, ok bool) {
	oldIndex := indexOf(siblingIDs, fromID)
	if oldIndex < 0 {
		return Move{}, siblingIDs, false
	}

	rest := make([]string, 0, len(siblingIDs))
	rest = append(rest, siblingIDs[:oldIndex]...)
	rest = append(rest, siblingIDs[oldIndex+1:]...)

	target := indexOf(rest, toID)
	if target < 0 {
		return Move{}, siblingIDs, false
	}
	if insertAfter {
		target++
	}
	if target == oldIndex {
		return Move{}, siblingIDs, false
	}

	order = make([]string, 0, len(siblingIDs))
	order = append(order, rest[:target]...)
	order = append(order, fromID)
	order = append(order, rest[target:]...)

	return Move{From: oldIndex + 1, To: target + 1}, order, true
}

// ApplyMove returns ids reordered by move
func ApplyMove(ids []string, move Move) ([]string, error) {
	if move.From < 1 || move.From > len(ids) || move.To < 1 || move.To > len(ids) {
		return nil, fmt.Errorf("%w: move %d->%d in group of %d", ErrMoveOutOfRange, move.From, move.To, len(ids))
	}

	moved := ids[move.From-1]
	rest := make([]string, 0, len(ids))
	rest = append(rest, ids[:move.From-1]...)
	rest = append(rest, ids[move.From:]...)

	out := make([]string, 0, len(ids))
	out = append(out, rest[:move.To-1]...)
	out = append(out, moved)
	out = append(out, rest[move.To-1:]...)
	return out, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
