package library

import (
	"time"
)

type AnnotationKind string

const (
	AnnotationBookmark AnnotationKind = "bookmark"
	AnnotationNote     AnnotationKind = "note"
)

// Annotation is a reader's bookmark or note on a material
type Annotation struct {
	ID         string         `json:"id" db:"id"`
	UserID     string         `json:"user_id" db:"user_id"`
	DocumentID string         `json:"document_id" db:"document_id"`
	MaterialID string         `json:"material_id" db:"material_id"`
	Kind       AnnotationKind `json:"kind" db:"kind"`
	Body       string         `json:"body,omitempty" db:"body"` // Empty for bookmarks
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}
