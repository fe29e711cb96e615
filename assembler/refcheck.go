package assembler

import (
	"strings"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
)

// checkRefs walks every $ref reachable from doc's paths and components and
// reports one AssemblyError per ref that does not resolve to a
// components.schemas entry. The walk mirrors the teacher's RefGraph
// traversal (joiner/refgraph.go's recordSchemaRefs/recordOperationSchemaRef)
// narrowly repurposed for a single assembly-time integrity check rather than
// a full cross-document dedup graph.
func checkRefs(doc *openapi.Document) apierrors.AssemblyErrors {
	var names map[string]bool
	if doc.Components != nil {
		names = make(map[string]bool, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names[name] = true
		}
	}

	var errs apierrors.AssemblyErrors
	report := func(path, ref string) {
		errs = append(errs, &apierrors.AssemblyError{
			Path:    path,
			Message: "unresolved reference " + ref,
		})
	}
	check := func(path string, schema *openapi.Schema) {
		walkSchema(schema, path, func(p, ref string) {
			name := strings.TrimPrefix(ref, "#/components/schemas/")
			if name == ref || !names[name] {
				report(p, ref)
			}
		})
	}

	for pathTemplate, item := range doc.Paths {
		for method, op := range item.Operations() {
			opPath := pathTemplate + " " + method
			for _, param := range op.Parameters {
				check(opPath+" parameter "+param.Name, param.Schema)
			}
			if op.RequestBody != nil {
				for ct, mt := range op.RequestBody.Content {
					check(opPath+" requestBody "+ct, mt.Schema)
				}
			}
			for status, resp := range op.Responses {
				for ct, mt := range resp.Content {
					check(opPath+" response "+status+" "+ct, mt.Schema)
				}
			}
		}
	}

	if doc.Components != nil {
		for name, schema := range doc.Components.Schemas {
			check("components.schemas."+name, schema)
		}
	}

	return errs
}

// walkSchema recursively visits every $ref in schema, invoking visit with
// the ref string for each one found. Composition keywords (allOf/anyOf/oneOf),
// items, and properties are all walked; this intentionally mirrors only the
// subset of JSON Schema keywords TypeOracle ever actually emits, not the
// full Draft 2020-12 vocabulary.
func walkSchema(schema *openapi.Schema, path string, visit func(path, ref string)) {
	if schema == nil {
		return
	}
	if schema.Ref != "" {
		visit(path, schema.Ref)
	}
	for name, prop := range schema.Properties {
		walkSchema(prop, path+".properties."+name, visit)
	}
	walkSchema(schema.Items, path+".items", visit)
	for _, s := range schema.PrefixItems {
		walkSchema(s, path+".prefixItems", visit)
	}
	for _, s := range schema.AllOf {
		walkSchema(s, path+".allOf", visit)
	}
	for _, s := range schema.AnyOf {
		walkSchema(s, path+".anyOf", visit)
	}
	for _, s := range schema.OneOf {
		walkSchema(s, path+".oneOf", visit)
	}
	walkSchema(schema.Not, path+".not", visit)
}
