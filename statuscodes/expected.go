// Package statuscodes implements ExpectedStatusCodes: a predicate built
// from unions of single codes and inclusive/exclusive ranges, checked
// against each call's observed status.
package statuscodes

import (
	"fmt"
	"strings"
)

// rangeKind distinguishes how a range's upper bound is treated.
type rangeKind int

const (
	kindSingle rangeKind = iota
	kindInclusive
	kindExclusive
)

type codeRange struct {
	kind rangeKind
	lo   int
	hi   int // inclusive bound for kindInclusive, exclusive bound for kindExclusive; unused for kindSingle
}

func (r codeRange) contains(code int) bool {
	switch r.kind {
	case kindSingle:
		return code == r.lo
	case kindInclusive:
		return code >= r.lo && code <= r.hi
	case kindExclusive:
		return code >= r.lo && code < r.hi
	default:
		return false
	}
}

func (r codeRange) String() string {
	switch r.kind {
	case kindSingle:
		return fmt.Sprintf("%d", r.lo)
	case kindInclusive:
		return fmt.Sprintf("%d..=%d", r.lo, r.hi)
	default:
		return fmt.Sprintf("%d..%d", r.lo, r.hi)
	}
}

// ExpectedStatusCodes is a union of status-code ranges. The zero value is
// invalid; use Default or New to construct one.
type ExpectedStatusCodes struct {
	ranges []codeRange
}

// Default returns the default expectation: the exclusive range [200, 500),
// i.e. every 2xx, 3xx, and 4xx status is expected, matching the original
// clawspec implementation's StatusCodeRange::Exclusive(200..500) rather
// than an inclusive 200..=499 reading of the prose.
func Default() *ExpectedStatusCodes {
	return &ExpectedStatusCodes{ranges: []codeRange{{kind: kindExclusive, lo: 200, hi: 500}}}
}

// New returns an empty ExpectedStatusCodes matching nothing until codes or
// ranges are added.
func New() *ExpectedStatusCodes {
	return &ExpectedStatusCodes{}
}

// mustValidCode panics on a status code outside the valid HTTP range,
// matching the original implementation's panic-based range validation at
// construction time (a caller building an invalid expectation is a
// programming error, not a runtime condition to recover from).
func mustValidCode(code int) {
	if code < 100 || code > 599 {
		panic(fmt.Sprintf("statuscodes: %d is not a valid HTTP status code (100-599)", code))
	}
}

// AddSingle adds a single status code to the expectation.
func (e *ExpectedStatusCodes) AddSingle(code int) *ExpectedStatusCodes {
	mustValidCode(code)
	e.ranges = append(e.ranges, codeRange{kind: kindSingle, lo: code})
	return e
}

// AddInclusiveRange adds the inclusive range [lo, hi].
func (e *ExpectedStatusCodes) AddInclusiveRange(lo, hi int) *ExpectedStatusCodes {
	mustValidCode(lo)
	mustValidCode(hi)
	e.ranges = append(e.ranges, codeRange{kind: kindInclusive, lo: lo, hi: hi})
	return e
}

// AddExclusiveRange adds the exclusive range [lo, hi).
func (e *ExpectedStatusCodes) AddExclusiveRange(lo, hi int) *ExpectedStatusCodes {
	mustValidCode(lo)
	mustValidCode(hi - 1)
	e.ranges = append(e.ranges, codeRange{kind: kindExclusive, lo: lo, hi: hi})
	return e
}

// Contains reports whether code satisfies any range in the expectation.
func (e *ExpectedStatusCodes) Contains(code int) bool {
	for _, r := range e.ranges {
		if r.contains(code) {
			return true
		}
	}
	return false
}

// String renders the expectation for error messages, e.g. "200..500" or
// "200..=299, 404".
func (e *ExpectedStatusCodes) String() string {
	parts := make([]string, len(e.ranges))
	for i, r := range e.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
