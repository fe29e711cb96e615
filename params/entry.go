// Package params implements the four parallel parameter containers — Path,
// Query, Header, Cookie — each accumulating (name, value, style) entries
// for a single ApiCall.
package params

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/paramstyle"
)

// Entry is one resolved parameter: its wire-form value plus the schema
// fragment the TypeOracle produced for it.
type Entry struct {
	Name     string
	Location paramstyle.Location
	Style    paramstyle.Style
	Explode  bool
	Required bool
	// WireValue holds the already-serialized wire form. For Form-style
	// exploded arrays, Values holds one wire value per array item (the
	// container repeats "name=item" rather than joining them). For
	// DeepObject and Form-style exploded objects, Pairs holds one
	// independent (key, value) wire pair per object key, since those
	// styles add several query parameters rather than one.
	WireValue string
	Values    []string
	Pairs     []paramstyle.KeyValue
	Schema    *openapi.Schema
}

func (e Entry) repeated() bool {
	return e.Values != nil
}

// Container is the common shape of Path/Query/Header/Cookie: an
// insertion-order-preserving mapping from name to Entry, where
// re-inserting a name replaces rather than appends.
type Container struct {
	location paramstyle.Location
	order    []string
	entries  map[string]Entry
}

func newContainer(loc paramstyle.Location) *Container {
	return &Container{location: loc, entries: make(map[string]Entry)}
}

// Put inserts or replaces the entry named name. Replacing an existing name
// does not change its position in iteration order, matching spec §4.3:
// "Re-inserting the same name REPLACES the prior entry (not append)."
func (c *Container) Put(e Entry) {
	e.Location = c.location
	if _, exists := c.entries[e.Name]; !exists {
		c.order = append(c.order, e.Name)
	}
	c.entries[e.Name] = e
}

// Get returns the entry named name, if present.
func (c *Container) Get(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Names returns every entry name, in the order matching Entries.
func (c *Container) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Entries returns every entry in insertion order.
func (c *Container) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

// Len reports how many distinct names are stored.
func (c *Container) Len() int { return len(c.order) }

// PathParams accumulates {name} path placeholders.
type PathParams struct{ *Container }

// NewPathParams returns an empty PathParams container.
func NewPathParams() *PathParams { return &PathParams{newContainer(paramstyle.Path)} }

// QueryParams accumulates query-string parameters, preserving insertion
// order since some servers are sensitive to query parameter order.
type QueryParams struct{ *Container }

// NewQueryParams returns an empty QueryParams container.
func NewQueryParams() *QueryParams { return &QueryParams{newContainer(paramstyle.Query)} }

// HeaderParams accumulates request headers, emitted name-sorted with
// canonical MIME header casing.
type HeaderParams struct{ *Container }

// NewHeaderParams returns an empty HeaderParams container.
func NewHeaderParams() *HeaderParams { return &HeaderParams{newContainer(paramstyle.Header)} }

// Put validates the header name is an RFC 7230 token and the value
// contains no CR/LF before delegating to Container.Put.
func (h *HeaderParams) Put(e Entry) error {
	if !isHTTPToken(e.Name) {
		return &apierrors.ParameterError{
			Name:     e.Name,
			Location: string(paramstyle.Header),
			Message:  "header name is not a valid RFC 7230 token",
		}
	}
	if containsIllegalHeaderRune(e.WireValue) {
		return &apierrors.ParameterError{
			Name:     e.Name,
			Location: string(paramstyle.Header),
			Message:  "header value contains CR or LF",
		}
	}
	h.Container.Put(e)
	return nil
}

// ApplyToHTTPHeader writes every entry into hdr using Go's canonical
// MIME header-name casing, iterating names sorted for deterministic
// emission.
func (h *HeaderParams) ApplyToHTTPHeader(hdr http.Header) {
	for _, name := range sortedNames(h.Names()) {
		e, _ := h.Get(name)
		hdr.Set(name, e.WireValue)
	}
}

// CookieParams accumulates cookie values, serialized as a single Cookie
// header with ";"-joined name=value pairs.
type CookieParams struct{ *Container }

// NewCookieParams returns an empty CookieParams container.
func NewCookieParams() *CookieParams { return &CookieParams{newContainer(paramstyle.Cookie)} }

// Header renders every cookie entry into a single RFC 6265 Cookie header
// value, each value percent-encoded.
func (c *CookieParams) Header() string {
	parts := make([]string, 0, c.Len())
	for _, e := range c.Entries() {
		parts = append(parts, e.Name+"="+encodeCookieValue(e.WireValue))
	}
	return strings.Join(parts, "; ")
}

func isHTTPToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r <= 0x20 || r > 0x7e || strings.ContainsRune("()<>@,;:\\\"/[]?={} \t", r) {
			return false
		}
	}
	return true
}

func containsIllegalHeaderRune(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// encodeCookieValue percent-encodes bytes RFC 6265 forbids in a
// cookie-octet: control characters, whitespace, DQUOTE, comma, semicolon,
// backslash.
func encodeCookieValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		if unicode.IsControl(r) || strings.ContainsRune(" \",;\\", r) {
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(hex(byte(r))))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func hex(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}

func sortedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && strings.ToLower(out[j-1]) > strings.ToLower(out[j]); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
