// Package opregistry implements OperationRegistry: operations keyed by
// (path_template, method), merged across repeated observations of the
// same endpoint.
package opregistry

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	json "github.com/segmentio/encoding/json"

	"github.com/oastrace/oastrace/internal/naming"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/params"
	"github.com/oastrace/oastrace/reqbody"
	"github.com/oastrace/oastrace/resultcollector"
)

// Key identifies an operation by its raw path template and HTTP method.
type Key struct {
	Method       string
	PathTemplate string
}

// ParamSpec is the merged view of one (name, location) parameter across
// every observation of an operation. Contradiction is set when two
// observations disagreed on this parameter's schema in a way mergeParam
// could not unify (see unifyParamSchemas); Assembler.Build surfaces it
// as an AssemblyError rather than silently composing a oneOf, which
// spec §4.2 reserves for bodies and responses.
type ParamSpec struct {
	Name          string
	Location      string
	Style         string
	Explode       bool
	Required      bool
	Schema        *openapi.Schema
	Contradiction bool
}

// BodySpec is the merged view of one content-type's request body.
type BodySpec struct {
	ContentType string
	Schema      *openapi.Schema
	SchemaName  string
}

// ResponseSpec is the merged view of one (status, content-type) response.
type ResponseSpec struct {
	Status      int
	ContentType string
	Schema      *openapi.Schema
	SchemaName  string
	Description string
}

type operation struct {
	key Key

	paramOrder []string
	params     map[string]*ParamSpec

	bodyOrder []string
	bodies    map[string]*BodySpec

	responseOrder []string
	responses     map[string]*ResponseSpec

	tagOrder    []string
	tagSet      map[string]bool
	description string
	operationID string
}

func newOperation(key Key) *operation {
	return &operation{
		key:       key,
		params:    make(map[string]*ParamSpec),
		bodies:    make(map[string]*BodySpec),
		responses: make(map[string]*ResponseSpec),
		tagSet:    make(map[string]bool),
	}
}

// Registry is OperationRegistry: single-writer, driven exclusively by the
// observation drain handler.
type Registry struct {
	ops          map[Key]*operation
	order        []Key
	operationIDs map[string]Key
	logger       *slog.Logger
}

// New constructs an empty Registry. If logger is nil, slog.Default() is
// used for the non-fatal style/explode mismatch warning spec §4.9 calls
// for.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		ops:          make(map[Key]*operation),
		operationIDs: make(map[string]Key),
		logger:       logger,
	}
}

func (r *Registry) getOrCreate(key Key) *operation {
	op, ok := r.ops[key]
	if !ok {
		op = newOperation(key)
		r.ops[key] = op
		r.order = append(r.order, key)
	}
	return op
}

// Observe folds one Observation into the registry, merging against any
// prior observation of the same (path_template, method).
func (r *Registry) Observe(obs resultcollector.Observation) {
	key := Key{Method: obs.Key.Method, PathTemplate: obs.Key.PathTemplate}
	op := r.getOrCreate(key)

	for _, entry := range obs.Params {
		r.mergeParam(op, entry)
	}
	if obs.RequestBody != nil {
		r.mergeBody(op, obs.RequestBody)
	}
	r.mergeResponse(op, obs.Response)
	r.mergeTags(op, obs.Tags)

	if op.description == "" && obs.Description != "" {
		op.description = obs.Description
	}
	r.mergeOperationID(op, obs.OperationID)
}

func paramKey(name, location string) string { return location + "\x00" + name }

func (r *Registry) mergeParam(op *operation, entry params.Entry) {
	k := paramKey(entry.Name, string(entry.Location))
	existing, ok := op.params[k]
	if !ok {
		op.params[k] = &ParamSpec{
			Name:     entry.Name,
			Location: string(entry.Location),
			Style:    string(entry.Style),
			Explode:  entry.Explode,
			Required: entry.Required,
			Schema:   entry.Schema,
		}
		op.paramOrder = append(op.paramOrder, k)
		return
	}

	wasRequired := existing.Required
	if !entry.Required {
		existing.Required = false
	}

	if merged, ok := unifyParamSchemas(existing.Schema, wasRequired, entry.Schema, entry.Required); ok {
		existing.Schema = merged
	} else {
		existing.Contradiction = true
	}

	if existing.Style != string(entry.Style) || existing.Explode != entry.Explode {
		r.logger.Warn("parameter style/explode mismatch across observations; keeping first-seen",
			"name", entry.Name, "location", entry.Location,
			"first_style", existing.Style, "first_explode", existing.Explode,
			"later_style", entry.Style, "later_explode", entry.Explode)
	}
}

func (r *Registry) mergeBody(op *operation, enc *reqbody.Encoding) {
	existing, ok := op.bodies[enc.ContentType]
	if !ok {
		op.bodies[enc.ContentType] = &BodySpec{ContentType: enc.ContentType, Schema: enc.Schema, SchemaName: enc.SchemaName}
		op.bodyOrder = append(op.bodyOrder, enc.ContentType)
		return
	}
	if !schemaEqual(existing.Schema, enc.Schema) {
		existing.Schema = composeOneOf(existing.Schema, enc.Schema)
	}
}

func responseKey(status int, contentType string) string {
	return contentType + "\x00" + strconv.Itoa(status)
}

func (r *Registry) mergeResponse(op *operation, resp resultcollector.ResponseObservation) {
	k := responseKey(resp.Status, resp.ContentType)
	existing, ok := op.responses[k]
	if !ok {
		op.responses[k] = &ResponseSpec{Status: resp.Status, ContentType: resp.ContentType, Schema: resp.Schema, SchemaName: resp.SchemaName, Description: resp.Description}
		op.responseOrder = append(op.responseOrder, k)
		return
	}
	if !schemaEqual(existing.Schema, resp.Schema) {
		existing.Schema = composeOneOf(existing.Schema, resp.Schema)
	}
	if existing.Description == "" && resp.Description != "" {
		existing.Description = resp.Description
	}
}

func (r *Registry) mergeTags(op *operation, tags []string) {
	for _, t := range tags {
		if !op.tagSet[t] {
			op.tagSet[t] = true
			op.tagOrder = append(op.tagOrder, t)
		}
	}
}

func (r *Registry) mergeOperationID(op *operation, id string) {
	if id == "" {
		return
	}
	if op.operationID == id {
		return
	}
	if op.operationID == "" {
		if owner, taken := r.operationIDs[id]; taken && owner != op.key {
			id = disambiguate(id, op.key)
		}
		op.operationID = id
		r.operationIDs[id] = op.key
		return
	}
	// op already has a different operationID recorded for this key; a
	// later call supplied a new one for the same operation, which is a
	// caller error but not fatal to collection — keep the first-seen.
	r.logger.Warn("operationID mismatch across observations of the same operation; keeping first-seen",
		"path", op.key.PathTemplate, "method", op.key.Method,
		"first", op.operationID, "later", id)
}

// disambiguate renames a colliding operationID by appending a PascalCase
// slug derived from the operation's path template, per spec §4.9.
func disambiguate(id string, key Key) string {
	slug := naming.ToPascalCase(strings.ReplaceAll(strings.ReplaceAll(key.PathTemplate, "{", ""), "}", ""))
	return id + slug
}

// Operations returns every merged operation, keyed and ready for the
// Assembler to place under paths.
func (r *Registry) Operations() []Operation {
	out := make([]Operation, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, toOperation(r.ops[key]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PathTemplate != out[j].PathTemplate {
			return out[i].PathTemplate < out[j].PathTemplate
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Operation is the read-only, fully merged view of one operation handed
// to the Assembler.
type Operation struct {
	Method       string
	PathTemplate string
	Params       []ParamSpec
	Bodies       []BodySpec
	Responses    []ResponseSpec
	Tags         []string
	Description  string
	OperationID  string
}

func toOperation(op *operation) Operation {
	out := Operation{
		Method:       op.key.Method,
		PathTemplate: op.key.PathTemplate,
		Description:  op.description,
		OperationID:  op.operationID,
	}
	for _, k := range op.paramOrder {
		out.Params = append(out.Params, *op.params[k])
	}
	for _, k := range op.bodyOrder {
		out.Bodies = append(out.Bodies, *op.bodies[k])
	}
	for _, k := range op.responseOrder {
		out.Responses = append(out.Responses, *op.responses[k])
	}
	out.Tags = append(out.Tags, op.tagOrder...)
	return out
}

func schemaEqual(a, b *openapi.Schema) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}

// unifyParamSchemas implements the parameter merge policy of spec §4.2/§4.9:
// two observations of the same parameter must unify to a single schema —
// either they're identical, or, when at least one observation marked the
// parameter optional, one schema's value space is a superset of the
// other's and the broader schema wins. Anything else is a genuine
// contradiction, reported to the caller rather than folded into a oneOf
// (that composition is reserved for request bodies and responses).
func unifyParamSchemas(existing *openapi.Schema, existingRequired bool, incoming *openapi.Schema, incomingRequired bool) (*openapi.Schema, bool) {
	if schemaEqual(existing, incoming) {
		return existing, true
	}
	if !existingRequired || !incomingRequired {
		if schemaIsSuperset(existing, incoming) {
			return existing, true
		}
		if schemaIsSuperset(incoming, existing) {
			return incoming, true
		}
	}
	return nil, false
}

// schemaIsSuperset reports whether every value satisfying sub also
// satisfies sup: sup names no required field sub doesn't also require,
// and every property sup and sub both describe agrees structurally.
// Properties only one side declares don't block a superset relationship
// — OpenAPI object schemas are open by default.
func schemaIsSuperset(sup, sub *openapi.Schema) bool {
	if sup == nil || sub == nil {
		return false
	}
	if sup.Type != sub.Type {
		return false
	}
	for _, req := range sup.Required {
		if !containsString(sub.Required, req) {
			return false
		}
	}
	for name, supProp := range sup.Properties {
		subProp, ok := sub.Properties[name]
		if !ok {
			continue
		}
		if !schemaEqual(supProp, subProp) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// composeOneOf folds two differing schemas into a oneOf composition,
// flattening nested oneOf lists rather than nesting them.
func composeOneOf(a, b *openapi.Schema) *openapi.Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	members := make([]*openapi.Schema, 0, 2)
	if len(a.OneOf) > 0 && a.Type == nil {
		members = append(members, a.OneOf...)
	} else {
		members = append(members, a)
	}
	if len(b.OneOf) > 0 && b.Type == nil {
		members = append(members, b.OneOf...)
	} else {
		members = append(members, b)
	}
	return &openapi.Schema{OneOf: dedupeSchemas(members)}
}

func dedupeSchemas(schemas []*openapi.Schema) []*openapi.Schema {
	out := make([]*openapi.Schema, 0, len(schemas))
	for _, s := range schemas {
		dup := false
		for _, existing := range out {
			if schemaEqual(existing, s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
