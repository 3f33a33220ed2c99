package config

const (
	// MaxRefLength is the maximum length for material and document references
	// such as "Art. 12" or "Title IV".
	MaxRefLength = 100

	// MaxTitleLength is the maximum length for document and material titles.
	// Limited to 500 because legal headings are long but still headings.
	MaxTitleLength = 500

	// MaxBodyLength is the maximum length of an article body in bytes.
	MaxBodyLength = 1 << 20

	// MaxCatalogueNameLength is the maximum length for catalogue and
	// document type names. Fits PostgreSQL VARCHAR(255).
	MaxCatalogueNameLength = 255

	// MaxNoteLength is the maximum length of a reader note.
	MaxNoteLength = 10000

	// MaxBulkStatusIDs caps one bulk status transition.
	MaxBulkStatusIDs = 1000
)
