// Package reqbody implements the Body component: encoding a request body
// in one of JSON, form-urlencoded, XML, NDJSON, multipart, raw bytes, or
// text, each producing an Encoding carrying the wire bytes plus the
// schema/example the TypeOracle and ApiCall recorded for it.
package reqbody

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"strings"

	json "github.com/segmentio/encoding/json"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/typeoracle"
)

// Encoding is the result of encoding one request body: the wire bytes,
// their content type, and the schema/example TypeOracle/Body recorded for
// documentation.
type Encoding struct {
	ContentType string
	Bytes       []byte
	Schema      *openapi.Schema
	SchemaName  string
	SchemaTree  map[string]*openapi.Schema
	Example     any
}

// Part is a single multipart/form-data part.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Value       any // encoded as JSON unless Raw is set
	Raw         []byte
}

// JSON encodes v as application/json, calling oracle to record both a
// schema reference and a serialized example.
func JSON(oracle typeoracle.Describe, v any) (Encoding, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Encoding{}, &apierrors.BodyError{ContentType: "application/json", Message: "marshal failed", Cause: err}
	}
	name, schema, tree, err := describe(oracle, v)
	if err != nil {
		return Encoding{}, err
	}
	return Encoding{ContentType: "application/json", Bytes: data, Schema: schema, SchemaName: name, SchemaTree: tree, Example: v}, nil
}

// Form encodes v as application/x-www-form-urlencoded. v must be a
// map[string]string, a map[string][]string, or a struct whose exported
// fields flatten to scalar values; anything else fails with a BodyError.
func Form(oracle typeoracle.Describe, v any) (Encoding, error) {
	values, err := toURLValues(v)
	if err != nil {
		return Encoding{}, err
	}
	name, schema, tree, err := describe(oracle, v)
	if err != nil {
		return Encoding{}, err
	}
	return Encoding{
		ContentType: "application/x-www-form-urlencoded",
		Bytes:       []byte(values.Encode()),
		Schema:      schema,
		SchemaName:  name,
		SchemaTree:  tree,
		Example:     v,
	}, nil
}

// XML encodes v as application/xml.
func XML(v any) (Encoding, error) {
	data, err := xml.Marshal(v)
	if err != nil {
		return Encoding{}, &apierrors.BodyError{ContentType: "application/xml", Message: "marshal failed", Cause: err}
	}
	return Encoding{ContentType: "application/xml", Bytes: data, Example: v}, nil
}

// NDJSON serializes each item in items as a JSON line, separated by "\n",
// with content-type application/x-ndjson.
func NDJSON(oracle typeoracle.Describe, items []any) (Encoding, error) {
	var buf bytes.Buffer
	var firstName string
	var firstSchema *openapi.Schema
	var firstTree map[string]*openapi.Schema
	for i, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return Encoding{}, &apierrors.BodyError{ContentType: "application/x-ndjson", Message: fmt.Sprintf("marshal item %d failed", i), Cause: err}
		}
		buf.Write(line)
		buf.WriteByte('\n')
		if i == 0 {
			firstName, firstSchema, firstTree, err = describe(oracle, item)
			if err != nil {
				return Encoding{}, err
			}
		}
	}
	var example any
	if len(items) > 0 {
		example = items[0]
	}
	return Encoding{
		ContentType: "application/x-ndjson",
		Bytes:       buf.Bytes(),
		Schema:      firstSchema,
		SchemaName:  firstName,
		SchemaTree:  firstTree,
		Example:     example,
	}, nil
}

// Multipart encodes parts as RFC 7578 multipart/form-data with a
// generated boundary. Each part carries its own Content-Type and optional
// filename.
func Multipart(parts []Part) (Encoding, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		raw := p.Raw
		if raw == nil {
			encoded, err := json.Marshal(p.Value)
			if err != nil {
				return Encoding{}, &apierrors.BodyError{ContentType: "multipart/form-data", Message: "marshal part " + p.Name + " failed", Cause: err}
			}
			raw = encoded
		}

		var fw io.Writer
		var err error
		if p.Filename != "" && p.ContentType == "" {
			fw, err = w.CreateFormFile(p.Name, p.Filename)
		} else {
			h := partHeader(p)
			if p.Filename != "" {
				h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, p.Name, p.Filename))
			}
			fw, err = w.CreatePart(h)
		}
		if err != nil {
			return Encoding{}, &apierrors.BodyError{ContentType: "multipart/form-data", Message: "create part " + p.Name + " failed", Cause: err}
		}
		if _, err := fw.Write(raw); err != nil {
			return Encoding{}, &apierrors.BodyError{ContentType: "multipart/form-data", Message: "write part " + p.Name + " failed", Cause: err}
		}
	}

	if err := w.Close(); err != nil {
		return Encoding{}, &apierrors.BodyError{ContentType: "multipart/form-data", Message: "close writer failed", Cause: err}
	}

	return Encoding{
		ContentType: w.FormDataContentType(),
		Bytes:       buf.Bytes(),
	}, nil
}

// Bytes wraps a pre-encoded payload with a caller-supplied MIME type.
func Bytes(buf []byte, mimeType string) Encoding {
	return Encoding{ContentType: mimeType, Bytes: buf}
}

// Text encodes s as text/plain.
func Text(s string) Encoding {
	return Encoding{ContentType: "text/plain; charset=utf-8", Bytes: []byte(s), Example: s}
}

func partHeader(p Part) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, p.Name))
	if p.ContentType != "" {
		h.Set("Content-Type", p.ContentType)
	}
	return h
}

func describe(oracle typeoracle.Describe, v any) (string, *openapi.Schema, map[string]*openapi.Schema, error) {
	if v == nil || oracle == nil {
		return "", &openapi.Schema{}, nil, nil
	}
	t := reflect.TypeOf(v)
	name, schema, _, err := oracle.Describe(t)
	if err != nil {
		return "", nil, nil, &apierrors.BodyError{Message: "type oracle failed", Cause: err}
	}
	if name == "" {
		return name, schema, nil, nil
	}
	tree, err := typeoracle.Tree(oracle, t)
	if err != nil {
		return "", nil, nil, &apierrors.BodyError{Message: "type oracle failed building schema tree", Cause: err}
	}
	return name, schema, tree, nil
}

func toURLValues(v any) (url.Values, error) {
	switch t := v.(type) {
	case url.Values:
		return t, nil
	case map[string]string:
		values := url.Values{}
		for k, val := range t {
			values.Set(k, val)
		}
		return values, nil
	case map[string][]string:
		return url.Values(t), nil
	default:
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, &apierrors.BodyError{
					ContentType: "application/x-www-form-urlencoded",
					Message:     fmt.Sprintf("unsupported form value type %T", v),
				}
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return nil, &apierrors.BodyError{
				ContentType: "application/x-www-form-urlencoded",
				Message:     fmt.Sprintf("unsupported form value type %T", v),
			}
		}
		return structToURLValues(rv)
	}
}

// structToURLValues flattens the exported fields of a struct into form
// values, honoring a "form" tag over a "json" tag over the field's own
// name (matching typeoracle's own name-resolution order), and skipping
// "-" and unset pointer/slice fields the same way typeoracle treats them
// as optional.
func structToURLValues(rv reflect.Value) (url.Values, error) {
	values := url.Values{}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := formFieldName(field)
		if name == "-" {
			continue
		}
		fv := rv.Field(i)
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				break
			}
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Pointer {
			continue
		}
		if fv.Kind() == reflect.Slice || fv.Kind() == reflect.Array {
			for j := 0; j < fv.Len(); j++ {
				values.Add(name, fmt.Sprint(fv.Index(j).Interface()))
			}
			continue
		}
		if !isScalarKind(fv.Kind()) {
			return nil, &apierrors.BodyError{
				ContentType: "application/x-www-form-urlencoded",
				Message:     fmt.Sprintf("form field %q does not flatten to a scalar value (%s)", field.Name, fv.Kind()),
			}
		}
		values.Set(name, fmt.Sprint(fv.Interface()))
	}
	return values, nil
}

func formFieldName(field reflect.StructField) string {
	if formTag := field.Tag.Get("form"); formTag != "" {
		if name := tagName(formTag); name != "" {
			return name
		}
	}
	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		if name := tagName(jsonTag); name != "" {
			return name
		}
	}
	return field.Name
}

// tagName takes the name portion of a `tag:"name,opt1,opt2"` value,
// mirroring typeoracle's own json-tag parsing.
func tagName(tag string) string {
	if i := strings.IndexByte(tag, ','); i >= 0 {
		return tag[:i]
	}
	return tag
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
