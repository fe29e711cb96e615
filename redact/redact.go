// Package redact rewrites example values against a wash-list of JSONPath
// patterns before they reach example storage, masking sensitive fields
// (passwords, tokens, secrets) observed during a test run. Redaction
// never touches schemas, only the example payloads collected alongside
// them.
package redact

import (
	"github.com/oastrace/oastrace/internal/jsonpath"
)

// const mask is the literal value redacted fields are replaced with.
const mask = "***REDACTED***"

// Pattern is a single wash-list entry: a JSONPath expression matching
// the fields to redact within an observed example document.
type Pattern struct {
	raw  string
	path *jsonpath.Path
}

// Compile parses expr as a JSONPath pattern for use in a WashList.
func Compile(expr string) (Pattern, error) {
	p, err := jsonpath.Parse(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{raw: expr, path: p}, nil
}

// String returns the pattern's original JSONPath expression.
func (p Pattern) String() string { return p.raw }

// WashList is an ordered set of redaction patterns supplied at
// ApiClient construction time; ApiClient is otherwise unaware of
// redaction's internals.
type WashList struct {
	patterns []Pattern
}

// NewWashList builds a WashList from zero or more compiled patterns.
func NewWashList(patterns ...Pattern) *WashList {
	return &WashList{patterns: patterns}
}

// MustCompile is Compile but panics on a malformed expression, for use
// in package-level WashList literals where the pattern is a constant.
func MustCompile(expr string) Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic("redact: invalid pattern " + expr + ": " + err.Error())
	}
	return p
}

// Apply rewrites example in place, replacing every value matched by any
// pattern in the list with the redaction mask. example is expected to be
// the generic any produced by decoding a JSON body (map[string]any,
// []any, or a scalar); it is mutated and also returned for convenience.
func (w *WashList) Apply(example any) any {
	if w == nil || example == nil {
		return example
	}
	for _, p := range w.patterns {
		_ = p.path.Modify(example, func(any) any { return mask })
	}
	return example
}

// Len reports how many patterns are registered.
func (w *WashList) Len() int {
	if w == nil {
		return 0
	}
	return len(w.patterns)
}
