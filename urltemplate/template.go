// Package urltemplate implements the Template component: parsing a raw
// path template such as "/pets/{petId}/photos" into an ordered segment
// list once, then resolving it against a set of named values on every
// call without re-parsing.
package urltemplate

import (
	"strings"
	"sync"

	"github.com/oastrace/oastrace/apierrors"
)

// segment is either a literal run of characters or a named placeholder.
type segment struct {
	literal string
	param   string // empty for a literal segment
}

func (s segment) isParam() bool { return s.param != "" }

// Template is an immutable, parsed path template. Parse once per distinct
// raw string; Resolve as many times as the template is called with.
type Template struct {
	raw        string
	segments   []segment
	paramNames map[string]struct{}
}

// segmentPool reuses the backing slice a Parse call builds its segment
// list in, since a test suite calls Parse with the same small handful of
// raw templates thousands of times over a run.
var segmentPool = sync.Pool{
	New: func() any {
		s := make([]segment, 0, 8)
		return &s
	},
}

// Parse scans raw once for balanced "{name}" placeholders and returns the
// resulting Template. An unbalanced brace fails with a TemplateError of
// kind TemplateUnbalanced.
func Parse(raw string) (*Template, error) {
	bufPtr := segmentPool.Get().(*[]segment)
	buf := (*bufPtr)[:0]

	var literal strings.Builder
	paramNames := make(map[string]struct{})

	depth := 0
	var paramStart int
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '{':
			if depth > 0 {
				segmentPool.Put(bufPtr)
				return nil, &apierrors.TemplateError{
					Kind: apierrors.TemplateUnbalanced,
					Raw:  raw,
					Message: "nested '{' before matching '}'",
				}
			}
			depth++
			if literal.Len() > 0 {
				buf = append(buf, segment{literal: literal.String()})
				literal.Reset()
			}
			paramStart = i + 1
		case '}':
			if depth == 0 {
				segmentPool.Put(bufPtr)
				return nil, &apierrors.TemplateError{
					Kind:    apierrors.TemplateUnbalanced,
					Raw:     raw,
					Message: "unmatched '}'",
				}
			}
			depth--
			name := raw[paramStart:i]
			if name == "" {
				segmentPool.Put(bufPtr)
				return nil, &apierrors.TemplateError{
					Kind:    apierrors.TemplateUnbalanced,
					Raw:     raw,
					Message: "empty parameter name",
				}
			}
			buf = append(buf, segment{param: name})
			paramNames[name] = struct{}{}
		default:
			if depth == 0 {
				literal.WriteByte(c)
			}
		}
	}
	if depth != 0 {
		segmentPool.Put(bufPtr)
		return nil, &apierrors.TemplateError{
			Kind:    apierrors.TemplateUnbalanced,
			Raw:     raw,
			Message: "unterminated '{'",
		}
	}
	if literal.Len() > 0 {
		buf = append(buf, segment{literal: literal.String()})
	}

	segments := make([]segment, len(buf))
	copy(segments, buf)

	*bufPtr = buf[:0]
	segmentPool.Put(bufPtr)

	return &Template{raw: raw, segments: segments, paramNames: paramNames}, nil
}

// Raw returns the original, unparsed template string.
func (t *Template) Raw() string { return t.raw }

// ParamNames returns the set of placeholder names this template declares.
func (t *Template) ParamNames() map[string]struct{} {
	names := make(map[string]struct{}, len(t.paramNames))
	for n := range t.paramNames {
		names[n] = struct{}{}
	}
	return names
}

// Resolve substitutes each placeholder with its value from values,
// percent-encoding path segments per RFC 3986, and collapses any doubled
// "/" produced by substitution (a trailing "/" from the raw template
// itself is preserved). A value already carrying its own "/"-style
// formatting (e.g. a pre-formatted Matrix/Label parameter) should be
// supplied pre-encoded and is passed through raw via rawValues.
//
// Missing returns a TemplateError of kind TemplateMissingParam; extra
// keys present in values but absent from the template return
// TemplateExtraParam — checked only after every placeholder in the
// template has been satisfied, since that is the only point both sets
// are fully known.
func (t *Template) Resolve(values map[string]string, rawValues map[string]struct{}) (string, error) {
	var b strings.Builder
	seen := make(map[string]struct{}, len(t.paramNames))

	for _, seg := range t.segments {
		if !seg.isParam() {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := values[seg.param]
		if !ok {
			return "", &apierrors.TemplateError{
				Kind:  apierrors.TemplateMissingParam,
				Raw:   t.raw,
				Param: seg.param,
			}
		}
		seen[seg.param] = struct{}{}
		if _, raw := rawValues[seg.param]; raw {
			b.WriteString(v)
		} else {
			b.WriteString(EncodePathSegment(v))
		}
	}

	for name := range values {
		if _, ok := t.paramNames[name]; !ok {
			return "", &apierrors.TemplateError{
				Kind:  apierrors.TemplateExtraParam,
				Raw:   t.raw,
				Param: name,
			}
		}
	}

	return collapseDoubleSlash(b.String()), nil
}

// collapseDoubleSlash merges any "//" created by substituting an empty (or
// already slash-containing) value into a single "/". A trailing "/" that
// was present in the raw template survives untouched since it only ever
// appears once.
func collapseDoubleSlash(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}
