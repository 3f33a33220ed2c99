// Package workflow loads the editorial status workflow for materials.
package workflow

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"lexlib/internal/domain/models/library"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the allowed statuses and transitions. It is read-only after load.
type Registry struct {
	initial  library.Status
	statuses map[library.Status]*StatusDefinition
	ordered  []StatusDefinition
}

// NewRegistry loads the embedded workflow definition
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/statuses.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read statuses.yaml: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML, rejecting statuses unknown to the domain model
func Parse(data []byte) (*Registry, error) {
	var file workflowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	if len(file.Statuses) == 0 {
		return nil, fmt.Errorf("workflow defines no statuses")
	}

	r := &Registry{
		initial:  file.Initial,
		statuses: make(map[library.Status]*StatusDefinition, len(file.Statuses)),
	}

	for id, def := range file.Statuses {
		if !id.Valid() {
			return nil, fmt.Errorf("unknown status %q in workflow", id)
		}
		if def == nil {
			def = &StatusDefinition{}
		}
		def.ID = id
		r.statuses[id] = def
	}

	for _, def := range r.statuses {
		for _, to := range def.Transitions {
			if _, ok := r.statuses[to]; !ok {
				return nil, fmt.Errorf("status %q transitions to undefined status %q", def.ID, to)
			}
		}
		r.ordered = append(r.ordered, *def)
	}

	if _, ok := r.statuses[r.initial]; !ok {
		return nil, fmt.Errorf("initial status %q is not defined", r.initial)
	}

	sort.Slice(r.ordered, func(i, j int) bool {
		if r.ordered[i].Order != r.ordered[j].Order {
			return r.ordered[i].Order < r.ordered[j].Order
		}
		return r.ordered[i].ID < r.ordered[j].ID
	})

	return r, nil
}

// Initial returns the status given to new materials
func (r *Registry) Initial() library.Status {
	return r.initial
}

// Has reports whether status is part of the workflow
func (r *Registry) Has(status library.Status) bool {
	_, ok := r.statuses[status]
	return ok
}

// CanTransition reports whether a material may move from one status to another.
// Staying in the same status is always allowed.
func (r *Registry) CanTransition(from, to library.Status) bool {
	if from == to {
		return r.Has(to)
	}
	def, ok := r.statuses[from]
	if !ok {
		return false
	}
	for _, allowed := range def.Transitions {
		if allowed == to {
			return true
		}
	}
	return false
}

// Statuses returns the workflow statuses in display order
func (r *Registry) Statuses() []StatusDefinition {
	return append([]StatusDefinition(nil), r.ordered...)
}
