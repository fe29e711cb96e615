package typeoracle

import (
	"encoding/json"
	"reflect"

	jsonschema "github.com/google/jsonschema-go/jsonschema"

	"github.com/oastrace/oastrace/openapi"
)

// JSONSchemaGoOracle delegates reflection to github.com/google/jsonschema-go
// instead of walking struct fields by hand. spec.md §9 explicitly invites
// a TypeOracle "delegated to an existing JSON-schema library"; this is
// that option, kept separate from ReflectOracle (the default) so a caller
// opts in deliberately rather than inheriting a different schema dialect
// by surprise.
type JSONSchemaGoOracle struct {
	cache *schemaCache
}

// NewJSONSchemaGoOracle returns a JSONSchemaGoOracle with a fresh type
// cache.
func NewJSONSchemaGoOracle() *JSONSchemaGoOracle {
	return &JSONSchemaGoOracle{cache: newSchemaCache()}
}

var _ Describe = (*JSONSchemaGoOracle)(nil)

// Describe implements Describe by running jsonschema.For against the
// dereferenced type and translating the resulting *jsonschema.Schema into
// an *openapi.Schema via a JSON round-trip — the two types share the same
// Draft 2020-12 field names, so encoding/json already performs the
// translation.
func (o *JSONSchemaGoOracle) Describe(t reflect.Type) (string, *openapi.Schema, []reflect.Type, error) {
	base := derefType(t)

	if name, ok := o.cache.nameFor(base); ok {
		return name, refToSchema(name), nil, nil
	}

	js, err := jsonschema.ForType(base, nil)
	if err != nil {
		return "", nil, nil, err
	}

	raw, err := json.Marshal(js)
	if err != nil {
		return "", nil, nil, err
	}

	var schema openapi.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return "", nil, nil, err
	}

	if base.Kind() != reflect.Struct {
		return "", &schema, nil, nil
	}

	name := canonicalName(base)
	o.cache.set(base, name)
	return name, refToSchema(name), collectNestedStructTypes(base), nil
}

// DescribeBody implements Describe, returning the struct's own schema
// body rather than Describe's bare $ref.
func (o *JSONSchemaGoOracle) DescribeBody(t reflect.Type) (string, *openapi.Schema, []reflect.Type, error) {
	base := derefType(t)

	js, err := jsonschema.ForType(base, nil)
	if err != nil {
		return "", nil, nil, err
	}

	raw, err := json.Marshal(js)
	if err != nil {
		return "", nil, nil, err
	}

	var schema openapi.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return "", nil, nil, err
	}

	if base.Kind() != reflect.Struct {
		return "", &schema, nil, nil
	}

	name := canonicalName(base)
	o.cache.set(base, name)
	return name, &schema, collectNestedStructTypes(base), nil
}

// collectNestedStructTypes walks a struct's exported fields one level deep
// to report nested named types the caller should also register, mirroring
// the refs ReflectOracle.Describe reports.
func collectNestedStructTypes(t reflect.Type) []reflect.Type {
	var refs []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		ft := derefType(field.Type)
		switch ft.Kind() {
		case reflect.Struct:
			if ft != reflect.TypeOf(struct{}{}) {
				refs = append(refs, ft)
			}
		case reflect.Slice, reflect.Array, reflect.Map:
			elem := derefType(ft.Elem())
			if elem.Kind() == reflect.Struct {
				refs = append(refs, elem)
			}
		}
	}
	return refs
}
