// Package schemaregistry implements SchemaRegistry: a store of named
// component schemas keyed by canonical name, with conflict detection and
// recursive insertion of transitively referenced types.
package schemaregistry

import (
	"reflect"
	"sort"

	json "github.com/segmentio/encoding/json"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/redact"
	"github.com/oastrace/oastrace/typeoracle"
)

// Registry is SchemaRegistry: single-writer, not safe for concurrent
// mutation (the observation drain handler is its only caller; see the
// apiclient package for the channel that enforces this).
type Registry struct {
	schemas   map[string]*openapi.Schema
	examples  map[string]any
	order     []string
	wash      *redact.WashList
	conflicts []*apierrors.SchemaConflictError
}

// New constructs an empty Registry. wash may be nil to disable example
// redaction.
func New(wash *redact.WashList) *Registry {
	return &Registry{
		schemas:  make(map[string]*openapi.Schema),
		examples: make(map[string]any),
		wash:     wash,
	}
}

// Put inserts (name, schema) following spec §4.8's three-way rule:
// absent → insert; present and structurally equal → no-op; present and
// differing → the first-seen schema wins and the conflict is recorded
// rather than raised, so a single bad observation can never starve the
// drain of every observation after it. Conflicts surface at assembly
// time, through Conflicts and Assembler.Build, not at insertion.
func (r *Registry) Put(name string, schema *openapi.Schema) {
	existing, ok := r.schemas[name]
	if !ok {
		r.schemas[name] = schema
		r.order = append(r.order, name)
		return
	}
	if structurallyEqual(existing, schema) {
		return
	}
	r.conflicts = append(r.conflicts, &apierrors.SchemaConflictError{Name: name, Existing: existing, Incoming: schema})
}

// Conflicts returns every schema conflict Put has recorded so far, in
// the order they were observed.
func (r *Registry) Conflicts() []*apierrors.SchemaConflictError {
	return r.conflicts
}

// PutExample stores an observed example value under name, running it
// through the wash-list before it reaches storage. Examples never affect
// conflict detection; only the schema does.
func (r *Registry) PutExample(name string, example any) {
	if example == nil {
		return
	}
	if _, exists := r.examples[name]; exists {
		return
	}
	r.examples[name] = r.wash.Apply(example)
}

// PutTree inserts rootType's own schema body and recursively describes
// and inserts every type transitively reachable from it, following the
// rule that transitive refs are inserted recursively. The walk itself
// lives in typeoracle.Tree, since the observation-channel handler needs
// the identical walk without holding a reflect.Type (a collector
// precomputes the tree at emit time and hands it across the channel as
// plain data); PutTree is this direct, type-driven entry point for
// callers that do have one (tests, and anything outside the channel).
func (r *Registry) PutTree(oracle typeoracle.Describe, rootType reflect.Type) error {
	tree, err := typeoracle.Tree(oracle, rootType)
	if err != nil {
		return err
	}
	r.PutMap(tree)
	return nil
}

// PutMap inserts every (name, schema) pair in tree, in canonical-name
// order so a recorded SchemaConflictError always names the same pair
// regardless of map iteration order. A conflict on one name never
// keeps the rest of tree from being inserted.
func (r *Registry) PutMap(tree map[string]*openapi.Schema) {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.Put(name, tree[name])
	}
}

// Schemas returns a copy of the registered schemas keyed by canonical
// name, ready for Assembler to place under components.schemas. The map
// itself carries no order; Names gives the sorted name list.
func (r *Registry) Schemas() map[string]*openapi.Schema {
	out := make(map[string]*openapi.Schema, len(r.schemas))
	for k, v := range r.schemas {
		out[k] = v
	}
	return out
}

// Names returns every registered canonical name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Example returns the stored (and redacted) example for name, if any.
func (r *Registry) Example(name string) (any, bool) {
	ex, ok := r.examples[name]
	return ex, ok
}

// structurallyEqual reports whether two schemas are semantically
// identical by comparing their canonical JSON encodings. Schemas from
// this module never contain actual pointer cycles (cross-type references
// are textual $ref strings, not aliased Go pointers), so marshaling is
// safe and needs no cycle guard.
func structurallyEqual(a, b *openapi.Schema) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
