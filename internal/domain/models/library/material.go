package library

import (
	"time"
)

// MaterialType distinguishes containers from leaves in a document's content
type MaterialType string

const (
	MaterialTypeDivision MaterialType = "division" // Container (titre, chapitre, section...)
	MaterialTypeArticle  MaterialType = "article"  // Leaf carrying body text
)

// Valid reports whether t is a known material type
func (t MaterialType) Valid() bool {
	return t == MaterialTypeDivision || t == MaterialTypeArticle
}

// Status is the editorial workflow state of a material
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusValidated  Status = "validated"
	StatusArchived   Status = "archived"
)

// Statuses lists the closed set of workflow states in display order
var Statuses = []Status{StatusInProgress, StatusValidated, StatusArchived}

// Valid reports whether s belongs to the closed set of statuses
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Material is one flat row of document content.
// ParentID is either another material's ID or the storage root of the document
// (the document ID, or its root material ID when the document has one).
type Material struct {
	ID            string       `json:"id" db:"id"`
	DocumentID    string       `json:"document_id" db:"document_id"`
	ParentID      string       `json:"parent_id" db:"parent_id"`
	Ref           string       `json:"ref" db:"ref"`
	Title         string       `json:"title" db:"title"`
	MaterialType  MaterialType `json:"material_type" db:"material_type"`
	Status        Status       `json:"status" db:"status"`
	Position      *int         `json:"position" db:"position"` // NULL sorts last among siblings
	Body          string       `json:"body,omitempty" db:"body"`
	ChildrenCount int          `json:"children_count" db:"children_count"` // Computed, not stored
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}
