// Package typeoracle implements the TypeOracle collaborator: given a Go
// type identity, it returns a canonical schema name, an OpenAPI schema
// fragment, and the set of nested types that fragment transitively
// references. It is deliberately the one place in oastrace that reaches
// for reflection — every other package receives a *openapi.Schema already
// built and never inspects a reflect.Type itself.
package typeoracle

import (
	"reflect"

	"github.com/oastrace/oastrace/openapi"
)

// Describe is the TypeOracle contract. Implementations must be pure and
// deterministic: the same type always yields the same canonical name and
// schema shape, so that repeated test runs produce byte-identical
// documents.
type Describe interface {
	// Describe returns the canonical component name for t (empty for
	// anonymous/inline types that should not be registered under
	// components.schemas), the schema fragment describing t, and the set
	// of nested named types that fragment references and that the caller
	// should also register. For a named (struct) type the returned schema
	// is a bare $ref to that name, suitable for embedding directly inside
	// a parent property or a response's media type — never the object's
	// own body, so a named type can reference itself or another named
	// type without inlining it twice.
	Describe(t reflect.Type) (name string, schema *openapi.Schema, refs []reflect.Type, err error)

	// DescribeBody returns the same name and refs as Describe, but the
	// type's own full schema body rather than a $ref to it. SchemaRegistry
	// uses this to populate components.schemas; nothing else should need
	// it, since every other consumer wants the $ref Describe already
	// gives them.
	DescribeBody(t reflect.Type) (name string, schema *openapi.Schema, refs []reflect.Type, err error)
}
