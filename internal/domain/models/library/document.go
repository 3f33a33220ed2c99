package library

import (
	"time"
)

type Document struct {
	ID             string    `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Ref            string    `json:"ref" db:"ref"`
	CatalogueID    *string   `json:"catalogue_id" db:"catalogue_id"`
	DocumentTypeID *string   `json:"document_type_id" db:"document_type_id"`
	RootMaterialID *string   `json:"root_material_id,omitempty" db:"root_material_id"` // Legacy imports hang content under one root row
	Published      bool      `json:"published" db:"published"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// StorageRootID returns the parent ID carried by top-level material rows.
func (d *Document) StorageRootID() string {
	if d.RootMaterialID != nil && *d.RootMaterialID != "" {
		return *d.RootMaterialID
	}
	return d.ID
}

// IsRootReference reports whether parentID designates the top level of the document,
// either through the document ID or the root material ID.
func (d *Document) IsRootReference(parentID string) bool {
	return parentID == d.ID || parentID == d.StorageRootID()
}

// DocumentDetails is the document-details fetch: the document plus its flat material list
type DocumentDetails struct {
	Document
	Materials []Material `json:"materials"`
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	CatalogueID    *string
	DocumentTypeID *string
	Published      *bool
}
