package materialtree

import (
	"lexlib/internal/domain/models/library"
)

const docID = "doc-1"

func pos(p int) *int { return &p }

func mat(id, parentID string, position *int, status library.Status) library.Material {
	return library.Material{
		ID:           id,
		DocumentID:   docID,
		ParentID:     parentID,
		Ref:          "ref-" + id,
		MaterialType: library.MaterialTypeDivision,
		Status:       status,
		Position:     position,
	}
}

// sampleMaterials describes:
//
//	T1 (1)            in_progress
//	  C1 (2)          in_progress
//	    A1 (1)        in_progress
//	    A2 (2)        validated
//	  C2 (1)          in_progress
//	T2 (nil)          validated
//	  A3 (1)          validated
//	T3 (2)            in_progress
func sampleMaterials() []library.Material {
	return []library.Material{
		mat("T2", docID, nil, library.StatusValidated),
		mat("C1", "T1", pos(2), library.StatusInProgress),
		mat("A1", "C1", pos(1), library.StatusInProgress),
		mat("T1", docID, pos(1), library.StatusInProgress),
		mat("A2", "C1", pos(2), library.StatusValidated),
		mat("C2", "T1", pos(1), library.StatusInProgress),
		mat("A3", "T2", pos(1), library.StatusValidated),
		mat("T3", docID, pos(2), library.StatusInProgress),
	}
}

func flatIDs(forest Forest) []string {
	var ids []string
	for _, row := range Flatten(forest) {
		ids = append(ids, row.Node.ID)
	}
	return ids
}
