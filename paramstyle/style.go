// Package paramstyle implements the OpenAPI 3.1 parameter style matrix:
// serializing a JSON value to wire form as a pure function of
// (value, style, explode, location).
package paramstyle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oastrace/oastrace/apierrors"
)

// Style names a parameter serialization style.
type Style string

const (
	Simple         Style = "simple"
	Label          Style = "label"
	Matrix         Style = "matrix"
	Form           Style = "form"
	SpaceDelimited Style = "spaceDelimited"
	PipeDelimited  Style = "pipeDelimited"
	DeepObject     Style = "deepObject"
)

// Location names where a parameter lives.
type Location string

const (
	Path   Location = "path"
	Query  Location = "query"
	Header Location = "header"
	Cookie Location = "cookie"
)

// DefaultStyle returns the style a location resolves to when the caller
// doesn't specify one: Simple for Path/Header, Form for Query/Cookie.
func DefaultStyle(loc Location) Style {
	switch loc {
	case Path, Header:
		return Simple
	default:
		return Form
	}
}

// legalAt reports whether style may be used at loc.
func legalAt(style Style, loc Location) bool {
	switch style {
	case Simple:
		return loc == Path || loc == Header
	case Label, Matrix:
		return loc == Path
	case Form:
		return loc == Query || loc == Cookie
	case SpaceDelimited, PipeDelimited, DeepObject:
		return loc == Query
	default:
		return false
	}
}

// Validate returns a ParameterError of kind StyleNotAllowed if style
// cannot be used at loc.
func Validate(name string, style Style, loc Location) error {
	if !legalAt(style, loc) {
		return &apierrors.ParameterError{
			Name:     name,
			Location: string(loc),
			Style:    string(style),
			Message:  "style not allowed at this location",
		}
	}
	return nil
}

// Value is the minimal shape paramstyle needs from a resolved JSON value:
// exactly one of Scalar, Array, or Object is populated.
type Value struct {
	Scalar string
	Array  []string
	Object map[string]string
}

// arrayDelimiter returns the join character array values use for the
// non-exploded Simple/Form/SpaceDelimited/PipeDelimited styles.
func arrayDelimiter(style Style) (string, error) {
	switch style {
	case Simple, Form, Label, Matrix:
		return ",", nil
	case SpaceDelimited:
		return " ", nil
	case PipeDelimited:
		return "|", nil
	default:
		return "", fmt.Errorf("style %q has no array delimiter", style)
	}
}

// Serialize renders v to wire form per the style matrix in spec §4.2. name
// is the parameter name (needed for Form explode, Matrix, and DeepObject,
// which all embed the name in the wire form itself).
func Serialize(name string, v Value, style Style, explode bool) (string, error) {
	switch {
	case v.Scalar != "" || (v.Array == nil && v.Object == nil):
		return serializeScalar(name, v.Scalar, style)
	case v.Array != nil:
		return serializeArray(name, v.Array, style, explode)
	default:
		return serializeObject(name, v.Object, style, explode)
	}
}

func serializeScalar(name, value string, style Style) (string, error) {
	switch style {
	case Simple, Form:
		return value, nil
	case Label:
		return "." + value, nil
	case Matrix:
		return ";" + name + "=" + value, nil
	default:
		return "", &apierrors.ParameterError{Name: name, Style: string(style), Message: "style has no primitive form"}
	}
}

func serializeArray(name string, items []string, style Style, explode bool) (string, error) {
	switch style {
	case Simple:
		return strings.Join(items, ","), nil
	case Label:
		if explode {
			return "." + strings.Join(items, "."), nil
		}
		return "." + strings.Join(items, ","), nil
	case Matrix:
		if explode {
			var b strings.Builder
			for _, it := range items {
				b.WriteString(";")
				b.WriteString(name)
				b.WriteString("=")
				b.WriteString(it)
			}
			return b.String(), nil
		}
		return ";" + name + "=" + strings.Join(items, ","), nil
	case Form:
		if explode {
			// Caller (params) repeats name=item per entry; here we just
			// report the joined values for a single-valued encoding.
			return strings.Join(items, "&"+name+"="), nil
		}
		return strings.Join(items, ","), nil
	case SpaceDelimited:
		return strings.Join(items, " "), nil
	case PipeDelimited:
		return strings.Join(items, "|"), nil
	default:
		return "", &apierrors.ParameterError{Name: name, Style: string(style), Message: "style has no array form"}
	}
}

// KeyValue is one (key, value) wire pair. DeepObject and Form-explode
// object styles don't serialize to a single wire value the way every
// other style does — their wire form is itself several independent
// query parameters — so a caller building a URL needs these pairs
// instead of (or alongside) Serialize's joined string.
type KeyValue struct {
	Key   string
	Value string
}

// ObjectPairs renders obj as the separate (key, value) pairs that
// DeepObject and Form-explode-object styles add individually to a query
// string, using the same key formatting and key ordering serializeObject
// uses for those two styles so the two can never drift apart.
func ObjectPairs(name string, obj map[string]string, style Style) []KeyValue {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		if style == DeepObject {
			pairs = append(pairs, KeyValue{Key: name + "[" + k + "]", Value: obj[k]})
		} else {
			pairs = append(pairs, KeyValue{Key: k, Value: obj[k]})
		}
	}
	return pairs
}

func serializeObject(name string, obj map[string]string, style Style, explode bool) (string, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch style {
	case Simple:
		var parts []string
		for _, k := range keys {
			if explode {
				parts = append(parts, k+"="+obj[k])
			} else {
				parts = append(parts, k, obj[k])
			}
		}
		return strings.Join(parts, ","), nil
	case Label:
		var parts []string
		for _, k := range keys {
			if explode {
				parts = append(parts, k+"="+obj[k])
			} else {
				parts = append(parts, k, obj[k])
			}
		}
		return "." + strings.Join(parts, "."), nil
	case Matrix:
		if explode {
			var b strings.Builder
			for _, k := range keys {
				b.WriteString(";")
				b.WriteString(k)
				b.WriteString("=")
				b.WriteString(obj[k])
			}
			return b.String(), nil
		}
		var parts []string
		for _, k := range keys {
			parts = append(parts, k, obj[k])
		}
		return ";" + name + "=" + strings.Join(parts, ","), nil
	case Form:
		if explode {
			var parts []string
			for _, k := range keys {
				parts = append(parts, k+"="+obj[k])
			}
			return strings.Join(parts, "&"), nil
		}
		var parts []string
		for _, k := range keys {
			parts = append(parts, k, obj[k])
		}
		return strings.Join(parts, ","), nil
	case DeepObject:
		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s[%s]=%s", name, k, obj[k]))
		}
		return strings.Join(parts, "&"), nil
	default:
		return "", &apierrors.ParameterError{Name: name, Style: string(style), Message: "style has no object form"}
	}
}
