// Package registry holds the immutable signal name to kind mapping.
//
// The registry is built once at process start from the authoritative
// store and is never mutated afterwards, so it is shared across request
// goroutines without locking. Picking up registry changes requires a
// process restart.
package registry

import (
	signal "github.com/okian/lodestar/internal/domain/signal"
)

// Registry answers kind lookups for registered signal names.
type Registry struct {
	kinds map[string]signal.Kind
}

// New builds a Registry from the loaded name to kind map. The map is
// copied so later mutation by the caller cannot leak in.
func New(kinds map[string]signal.Kind) *Registry {
	owned := make(map[string]signal.Kind, len(kinds))
	for name, kind := range kinds {
		owned[name] = kind
	}
	return &Registry{kinds: owned}
}

// Lookup returns the declared kind for name. A missing name is an
// expected outcome (the reading gets quarantined as unknown), not an
// error.
func (r *Registry) Lookup(name string) (signal.Kind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

// Size returns the number of registered signals.
func (r *Registry) Size() int {
	return len(r.kinds)
}
