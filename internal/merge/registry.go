// Package merge hosts the custom mergers that override the generic VCS
// merge for specific files whose content must be merged semantically.
package merge

import "github.com/alexisbeaulieu97/uplift/internal/model"

// CustomMerger is the two-method contract a specialized merger satisfies.
type CustomMerger interface {
	// Matches reports whether this merger handles the relative path.
	Matches(rel string) bool

	// Merge combines the three versions of the file. base may be nil when
	// the file has no common ancestor.
	Merge(rel string, current, base, target []byte) (model.MergeOutcome, error)
}

// Registry is an ordered list of custom mergers; first match wins.
type Registry struct {
	mergers []CustomMerger
}

// NewRegistry creates a registry with the given mergers in lookup order.
func NewRegistry(mergers ...CustomMerger) *Registry {
	return &Registry{mergers: mergers}
}

// DefaultRegistry returns the registry the engine ships with.
func DefaultRegistry() *Registry {
	return NewRegistry(NewMetadataMerger())
}

// Find returns the first merger claiming the path.
func (r *Registry) Find(rel string) (CustomMerger, bool) {
	if r == nil {
		return nil, false
	}
	for _, m := range r.mergers {
		if m.Matches(rel) {
			return m, true
		}
	}
	return nil, false
}
