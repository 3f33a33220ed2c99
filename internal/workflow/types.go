package workflow

import (
	"lexlib/internal/domain/models/library"
)

// StatusDefinition describes one workflow status
type StatusDefinition struct {
	// Status identifier (set from the YAML map key)
	ID library.Status `yaml:"-" json:"id"`

	Label       string           `yaml:"label" json:"label"`
	Order       int              `yaml:"order" json:"order"`
	Transitions []library.Status `yaml:"transitions" json:"transitions"`
}

// workflowFile is the on-disk shape of statuses.yaml
type workflowFile struct {
	Initial  library.Status                       `yaml:"initial"`
	Statuses map[library.Status]*StatusDefinition `yaml:"statuses"`
}
