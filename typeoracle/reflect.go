package typeoracle

import (
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/oastrace/oastrace/openapi"
)

// ReflectOracle is the default TypeOracle: a hand-written reflection walk
// over a Go type's shape, with no code generation and no external
// JSON-Schema library involved. It never mutates a components.schemas map
// directly (that is SchemaRegistry's job); Describe returns the schema
// fragment plus the nested named types the caller should also describe
// and register.
type ReflectOracle struct {
	cache *schemaCache
}

// NewReflectOracle returns a ReflectOracle with a fresh type cache.
func NewReflectOracle() *ReflectOracle {
	return &ReflectOracle{cache: newSchemaCache()}
}

var _ Describe = (*ReflectOracle)(nil)

// Describe implements Describe.
func (o *ReflectOracle) Describe(t reflect.Type) (string, *openapi.Schema, []reflect.Type, error) {
	var refs []reflect.Type
	schema := o.describe(t, &refs)
	name, _ := o.cache.nameFor(derefType(t))
	return name, schema, refs, nil
}

// DescribeBody implements Describe. Unlike Describe, a struct's own
// schema body is returned directly instead of folded into a $ref: the
// in-progress marker still guards a struct against describing itself
// while its own fields are being walked, but the name is only recorded
// in the cache (so other callers embedding this type get a $ref) after
// the body is built.
func (o *ReflectOracle) DescribeBody(t reflect.Type) (string, *openapi.Schema, []reflect.Type, error) {
	base := derefType(t)

	if special := specialTypeSchema(base); special != nil {
		return "", special, nil, nil
	}

	if base.Kind() != reflect.Struct {
		var refs []reflect.Type
		schema := o.describe(t, &refs)
		return "", schema, refs, nil
	}

	var refs []reflect.Type
	o.cache.markInProgress(base)
	schema := o.describeStruct(base, &refs)
	o.cache.clearInProgress(base)

	name := canonicalName(base)
	o.cache.set(base, name)
	return name, schema, refs, nil
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// describe walks t in order: pointer deref, special type short-circuit,
// cache hit, in-progress (circular reference) check, then kind-dispatch.
func (o *ReflectOracle) describe(t reflect.Type, refs *[]reflect.Type) *openapi.Schema {
	isPointer := false
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
		isPointer = true
	}

	if special := specialTypeSchema(t); special != nil {
		if isPointer {
			nullableType(special)
		}
		return special
	}

	if name, ok := o.cache.nameFor(t); ok {
		*refs = append(*refs, t)
		return refToSchema(name)
	}

	if o.cache.isInProgress(t) {
		name := canonicalName(t)
		*refs = append(*refs, t)
		return refToSchema(name)
	}

	var schema *openapi.Schema
	switch t.Kind() {
	case reflect.Struct:
		o.cache.markInProgress(t)
		defer o.cache.clearInProgress(t)

		schema = o.describeStruct(t, refs)

		name := canonicalName(t)
		o.cache.set(t, name)
		*refs = append(*refs, t)
		return refToSchema(name)

	case reflect.Slice, reflect.Array:
		schema = o.describeArray(t, refs)

	case reflect.Map:
		schema = o.describeMap(t, refs)

	default:
		schema = describePrimitive(t)
	}

	if isPointer && schema != nil {
		nullableType(schema)
	}
	return schema
}

// specialTypeSchema handles types whose JSON Schema shape does not follow
// from their Go kind: time.Time and uuid.UUID (matched by type-name string
// so this package need not depend on github.com/google/uuid).
func specialTypeSchema(t reflect.Type) *openapi.Schema {
	if t == reflect.TypeOf(time.Time{}) {
		return &openapi.Schema{Type: "string", Format: "date-time"}
	}
	if t.String() == "uuid.UUID" {
		return &openapi.Schema{Type: "string", Format: "uuid"}
	}
	return nil
}

// describeStruct reflects over a struct's exported fields, honoring `json`
// tag naming/omission and inlining anonymous embedded fields.
func (o *ReflectOracle) describeStruct(t reflect.Type, refs *[]reflect.Type) *openapi.Schema {
	properties := make(map[string]*openapi.Schema)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous {
			embedded := o.describe(field.Type, refs)
			if embedded == nil {
				continue
			}
			if embedded.Ref != "" {
				if refName := extractRefName(embedded.Ref); refName != "" {
					if refType, ok := o.cache.typeForName(refName); ok {
						inlineEmbedded(o.describeStruct(refType, refs), properties, &required)
					}
				}
				continue
			}
			inlineEmbedded(embedded, properties, &required)
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		fieldSchema := o.describe(field.Type, refs)
		properties[name] = fieldSchema

		if isFieldRequired(field, opts) {
			required = append(required, name)
		}
	}

	return &openapi.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func inlineEmbedded(embedded *openapi.Schema, properties map[string]*openapi.Schema, required *[]string) {
	if embedded == nil {
		return
	}
	for propName, propSchema := range embedded.Properties {
		if _, exists := properties[propName]; !exists {
			properties[propName] = propSchema
		}
	}
	for _, req := range embedded.Required {
		if !slices.Contains(*required, req) {
			*required = append(*required, req)
		}
	}
}

func (o *ReflectOracle) describeArray(t reflect.Type, refs *[]reflect.Type) *openapi.Schema {
	items := o.describe(t.Elem(), refs)
	return &openapi.Schema{Type: "array", Items: items}
}

func (o *ReflectOracle) describeMap(t reflect.Type, refs *[]reflect.Type) *openapi.Schema {
	values := o.describe(t.Elem(), refs)
	return &openapi.Schema{Type: "object", AdditionalProperties: values}
}

func describePrimitive(t reflect.Type) *openapi.Schema {
	switch t.Kind() {
	case reflect.String:
		return &openapi.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi.Schema{Type: "integer", Format: "int32"}
	case reflect.Int64:
		return &openapi.Schema{Type: "integer", Format: "int64"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &openapi.Schema{Type: "integer", Format: "int32"}
	case reflect.Uint64:
		return &openapi.Schema{Type: "integer", Format: "int64"}
	case reflect.Float32:
		return &openapi.Schema{Type: "number", Format: "float"}
	case reflect.Float64:
		return &openapi.Schema{Type: "number", Format: "double"}
	case reflect.Bool:
		return &openapi.Schema{Type: "boolean"}
	default:
		return &openapi.Schema{}
	}
}

// nullableType folds pointer-nullability into the 3.1 type array form
// (type: [T, "null"]) rather than the retired OAS 3.0 nullable flag.
func nullableType(s *openapi.Schema) {
	switch v := s.Type.(type) {
	case string:
		if v != "" {
			s.Type = []string{v, "null"}
		} else {
			s.Type = "null"
		}
	case []string:
		if !slices.Contains(v, "null") {
			s.Type = append(v, "null")
		}
	}
}

func refToSchema(name string) *openapi.Schema {
	return &openapi.Schema{Ref: "#/components/schemas/" + name}
}

const schemaRefPrefix = "#/components/schemas/"

func extractRefName(ref string) string {
	if strings.HasPrefix(ref, schemaRefPrefix) {
		return ref[len(schemaRefPrefix):]
	}
	return ""
}

// canonicalName derives a component schema name from a type's own name,
// falling back to "AnonymousType" for unnamed types (anonymous structs).
func canonicalName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return "AnonymousType"
}

// parseJSONTag splits a `json:"name,opt1,opt2"` tag into its name and
// option set.
func parseJSONTag(tag string) (name string, opts []string) {
	if tag == "" {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func isFieldRequired(field reflect.StructField, jsonOpts []string) bool {
	for _, opt := range jsonOpts {
		if opt == "omitempty" {
			return false
		}
	}
	if oasTag := field.Tag.Get("oas"); oasTag != "" {
		if strings.Contains(oasTag, "optional") {
			return false
		}
	}
	// Pointer and slice/map fields are optional by Go convention unless
	// explicitly marked required via the oas tag.
	switch field.Type.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		return strings.Contains(field.Tag.Get("oas"), "required")
	default:
		return true
	}
}
