package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/tabula/internal/model"
)

// Applier is a pure function applying one operation to a document state.
// It receives a private clone of the current state and returns the next
// state. Appliers must be deterministic: same state and args, same result,
// every time - that property is what makes snapshots disposable and
// replay exact.
//
// Returning an error rejects the operation against the current state
// (e.g. referencing a removed element). Appliers interpret args; the
// engine never does.
type Applier func(state model.Object, args model.Object) (model.Object, error)

// Registry maps operation kinds to appliers. Owned by the document-type
// definition and supplied to the engine as a dependency.
//
// Populate the registry once at startup. After that it is shared-read
// only; Register is not safe to call concurrently with Lookup.
type Registry struct {
	appliers map[string]Applier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{appliers: make(map[string]Applier)}
}

// Register adds an applier for an operation kind.
// New operation kinds are added here, never by modifying the commit or
// replay paths.
func (r *Registry) Register(kind string, fn Applier) error {
	if kind == "" {
		return fmt.Errorf("operation kind is required")
	}
	if fn == nil {
		return fmt.Errorf("applier for %q is nil", kind)
	}
	if _, ok := r.appliers[kind]; ok {
		return fmt.Errorf("duplicate operation kind: %s", kind)
	}
	r.appliers[kind] = fn
	return nil
}

// MustRegister is Register but panics on error.
// Use for static registration at startup.
func (r *Registry) MustRegister(kind string, fn Applier) {
	if err := r.Register(kind, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the applier for an operation kind.
func (r *Registry) Lookup(kind string) (Applier, bool) {
	fn, ok := r.appliers[kind]
	return fn, ok
}

// Kinds returns all registered operation kinds, sorted.
// Used for diagnostics and CLI output.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.appliers))
	for k := range r.appliers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
