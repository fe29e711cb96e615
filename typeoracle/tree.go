package typeoracle

import (
	"reflect"

	"github.com/oastrace/oastrace/openapi"
)

// Tree walks t and everything it transitively references via oracle,
// returning every named type's own schema body keyed by its canonical
// name. Callers that need to register a type's full component tree
// (rather than the bare $ref Describe hands back) build it once here
// instead of re-deriving the walk themselves; the only current
// consumer is SchemaRegistry, reached either directly (PutTree) or via
// an Observation a collector already populated with a precomputed
// tree so the observation-channel handler never touches reflection.
func Tree(oracle Describe, t reflect.Type) (map[string]*openapi.Schema, error) {
	name, schema, refs, err := oracle.DescribeBody(t)
	if err != nil {
		return nil, err
	}
	tree := make(map[string]*openapi.Schema)
	if name != "" {
		tree[name] = schema
	}

	seen := map[reflect.Type]bool{t: true}
	queue := append([]reflect.Type{}, refs...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true

		nestedName, nestedSchema, nested, err := oracle.DescribeBody(next)
		if err != nil {
			return nil, err
		}
		if nestedName == "" {
			continue
		}
		tree[nestedName] = nestedSchema
		queue = append(queue, nested...)
	}
	return tree, nil
}
