package materialtree

import (
	"errors"
)

// ErrUnordered is returned when a sibling group must be normalised before planning
var ErrUnordered = errors.New("sibling positions are not strictly ordered")

// Sibling is a member of a sibling group as stored: its ID and position, in display order
type Sibling struct {
	ID       string
	Position *int
}

// PositionUpdate is a single position write
type PositionUpdate struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Normalize renumbers a sibling group 1..n when its positions cannot express a
// strict order (a missing position, or a duplicate). Groups already in strict
// ascending order come back unchanged with no updates.
func Normalize(siblings []Sibling) ([]Sibling, []PositionUpdate) {
	if strictlyOrdered(siblings) {
		return siblings, nil
	}

	out := make([]Sibling, len(siblings))
	var updates []PositionUpdate
	for i, s := range siblings {
		pos := i + 1
		out[i] = Sibling{ID: s.ID, Position: &pos}
		if s.Position == nil || *s.Position != pos {
			updates = append(updates, PositionUpdate{ID: s.ID, Position: pos})
		}
	}
	return out, updates
}

func strictlyOrdered(siblings []Sibling) bool {
	for i, s := range siblings {
		if s.Position == nil {
			return false
		}
		if i > 0 && *s.Position <= *siblings[i-1].Position {
			return false
		}
	}
	return true
}

// PlanMove turns a rank move into position writes. Only the siblings ranked
// between From and To are touched: they trade the position values already held
// in that range. siblings must be strictly ordered (see Normalize).
//
// The group may be a status-filtered view of the stored siblings; hidden
// siblings keep their positions and so keep their place relative to the range.
func PlanMove(siblings []Sibling, move Move) ([]PositionUpdate, error) {
	if !strictlyOrdered(siblings) {
		return nil, ErrUnordered
	}

	ids := make([]string, len(siblings))
	for i, s := range siblings {
		ids[i] = s.ID
	}

	reordered, err := ApplyMove(ids, move)
	if err != nil {
		return nil, err
	}

	lo, hi := move.From-1, move.To-1
	if lo > hi {
		lo, hi = hi, lo
	}

	var updates []PositionUpdate
	for i := lo; i <= hi; i++ {
		slot := *siblings[i].Position
		if reordered[i] != ids[i] {
			updates = append(updates, PositionUpdate{ID: reordered[i], Position: slot})
		}
	}
	return updates, nil
}

// MergeUpdates concatenates update batches; when an ID is written more than once
// the last position wins and the ID keeps its first slot in the output.
func MergeUpdates(batches ...[]PositionUpdate) []PositionUpdate {
	seen := make(map[string]int)
	var out []PositionUpdate
	for _, batch := range batches {
		for _, u := range batch {
			if i, ok := seen[u.ID]; ok {
				out[i].Position = u.Position
				continue
			}
			seen[u.ID] = len(out)
			out = append(out, u)
		}
	}
	return out
}
