// Package assembler implements Assembler: the final step that folds
// OperationRegistry, SchemaRegistry, and the registered security schemes
// into a single OpenAPI 3.1 Document, or fails with an AssemblyError
// naming exactly what could not be resolved.
package assembler

import (
	"sort"
	"strconv"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/internal/naming"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/opregistry"
	"github.com/oastrace/oastrace/schemaregistry"
)

// Assembler accumulates the document-level metadata that has no home in
// either registry — info, servers, default security, tag descriptions —
// before Build folds in the accumulated operations and schemas.
type Assembler struct {
	info         *openapi.Info
	servers      []*openapi.Server
	security     []openapi.SecurityRequirement
	externalDocs *openapi.ExternalDocs
	jsonSchema   string

	tagDescriptions map[string]string
}

// New constructs an Assembler carrying info, the one required piece of
// document metadata nothing else can synthesize.
func New(info *openapi.Info) *Assembler {
	return &Assembler{
		info:            info,
		tagDescriptions: make(map[string]string),
	}
}

// SetServers overrides the document's servers list.
func (a *Assembler) SetServers(servers ...*openapi.Server) *Assembler {
	a.servers = servers
	return a
}

// SetDefaultSecurity sets the document-level security requirement,
// applied to every operation unless an operation names its own.
func (a *Assembler) SetDefaultSecurity(reqs ...openapi.SecurityRequirement) *Assembler {
	a.security = reqs
	return a
}

// SetExternalDocs sets the document-level external documentation link.
func (a *Assembler) SetExternalDocs(docs *openapi.ExternalDocs) *Assembler {
	a.externalDocs = docs
	return a
}

// SetJSONSchemaDialect overrides the default JSON Schema dialect URI.
func (a *Assembler) SetJSONSchemaDialect(uri string) *Assembler {
	a.jsonSchema = uri
	return a
}

// DescribeTag attaches a description to a tag name, overriding the
// display-title default Build would otherwise synthesize for it.
func (a *Assembler) DescribeTag(name, description string) *Assembler {
	a.tagDescriptions[name] = description
	return a
}

// Build assembles the final Document from ops (OperationRegistry.Operations()),
// schemas (SchemaRegistry), and securitySchemes (security.Registry.SecuritySchemes()).
// It fails with an apierrors.AssemblyErrors if any $ref in the resulting
// document does not resolve to a components.schemas entry.
func (a *Assembler) Build(ops []opregistry.Operation, schemas *schemaregistry.Registry, securitySchemes map[string]*openapi.SecurityScheme) (*openapi.Document, error) {
	doc := &openapi.Document{
		OpenAPI:           "3.1.0",
		Info:              a.info,
		JSONSchemaDialect: a.jsonSchema,
		Servers:           a.servers,
		Security:          a.security,
		ExternalDocs:      a.externalDocs,
	}

	doc.Paths = buildPaths(ops)
	doc.Tags = buildTags(ops, a.tagDescriptions)

	components := &openapi.Components{}
	if len(schemas.Names()) > 0 {
		components.Schemas = schemas.Schemas()
	}
	if len(securitySchemes) > 0 {
		components.SecuritySchemes = securitySchemes
	}
	if len(components.Schemas) > 0 || len(components.SecuritySchemes) > 0 {
		doc.Components = components
	}

	errs := checkRefs(doc)
	errs = append(errs, conflictErrors(schemas)...)
	errs = append(errs, paramContradictionErrors(ops)...)
	if len(errs) > 0 {
		return nil, errs
	}

	return doc, nil
}

// paramContradictionErrors reports one AssemblyError per parameter whose
// observations mergeParam could not unify into a single schema, per
// spec §4.2/§4.9's unify-or-contradict rule for parameters.
func paramContradictionErrors(ops []opregistry.Operation) apierrors.AssemblyErrors {
	var errs apierrors.AssemblyErrors
	for _, op := range ops {
		for _, p := range op.Params {
			if !p.Contradiction {
				continue
			}
			errs = append(errs, &apierrors.AssemblyError{
				Path:    op.PathTemplate + " " + op.Method + " parameter " + p.Name,
				Message: "conflicting schemas observed for the same parameter",
			})
		}
	}
	return errs
}

// conflictErrors wraps every SchemaConflictError schemas has accumulated
// into an AssemblyError, so a run with conflicting observations fails at
// Build time with every conflict named at once, per spec §4.8's rule
// that conflicts surface at assembly, not at insertion.
func conflictErrors(schemas *schemaregistry.Registry) apierrors.AssemblyErrors {
	conflicts := schemas.Conflicts()
	if len(conflicts) == 0 {
		return nil
	}
	errs := make(apierrors.AssemblyErrors, 0, len(conflicts))
	for _, c := range conflicts {
		errs = append(errs, &apierrors.AssemblyError{
			Path:    "components.schemas." + c.Name,
			Message: "conflicting schemas observed for the same name",
			Cause:   c,
		})
	}
	return errs
}

// buildPaths groups ops by path template into Paths, sorting the
// resulting keys lexicographically for stable serialization.
func buildPaths(ops []opregistry.Operation) openapi.Paths {
	if len(ops) == 0 {
		return nil
	}
	paths := make(openapi.Paths)
	for _, op := range ops {
		item, ok := paths[op.PathTemplate]
		if !ok {
			item = &openapi.PathItem{}
			paths[op.PathTemplate] = item
		}
		item.SetOperation(op.Method, buildOperation(op))
	}
	return paths
}

func buildOperation(op opregistry.Operation) *openapi.Operation {
	out := &openapi.Operation{
		OperationID: op.OperationID,
		Description: op.Description,
		Tags:        op.Tags,
	}

	for _, p := range op.Params {
		out.Parameters = append(out.Parameters, buildParameter(p))
	}

	if body := buildRequestBody(op.Bodies); body != nil {
		out.RequestBody = body
	}

	out.Responses = buildResponses(op.Responses)

	return out
}

func buildParameter(p opregistry.ParamSpec) *openapi.Parameter {
	required := p.Required
	if p.Location == "path" {
		// Path parameters are always required per the OAS 3.1 object rules.
		required = true
	}
	explode := p.Explode
	return &openapi.Parameter{
		Name:     p.Name,
		In:       p.Location,
		Required: required,
		Style:    p.Style,
		Explode:  &explode,
		Schema:   p.Schema,
	}
}

func buildRequestBody(bodies []opregistry.BodySpec) *openapi.RequestBody {
	if len(bodies) == 0 {
		return nil
	}
	content := make(map[string]*openapi.MediaType, len(bodies))
	for _, b := range bodies {
		content[b.ContentType] = &openapi.MediaType{Schema: b.Schema}
	}
	return &openapi.RequestBody{Required: true, Content: content}
}

// buildResponses groups ResponseSpecs (one per status+content-type pair)
// into one Response object per status code, each response always
// carrying a description — defaulted to "Status code <N>" when the
// registry never observed one, per the output artifact's documented
// file layout.
func buildResponses(specs []opregistry.ResponseSpec) openapi.Responses {
	if len(specs) == 0 {
		return nil
	}
	responses := make(openapi.Responses)
	for _, s := range specs {
		key := statusKey(s.Status)
		resp, ok := responses[key]
		if !ok {
			desc := s.Description
			if desc == "" {
				desc = defaultStatusDescription(s.Status)
			}
			resp = &openapi.Response{Description: desc}
			responses[key] = resp
		}
		if resp.Content == nil {
			resp.Content = make(map[string]*openapi.MediaType)
		}
		resp.Content[s.ContentType] = &openapi.MediaType{Schema: s.Schema}
	}
	return responses
}

// statusKey renders a status code as the decimal string Responses keys
// expect. The registry only ever observes concrete status codes, so
// Assembler never needs to emit the symbolic "default" key.
func statusKey(status int) string {
	return strconv.Itoa(status)
}

// defaultStatusDescription is the fallback a response carries when no
// collector or call ever supplied one, per the output artifact's
// documented file layout: a response object always carries a
// description.
func defaultStatusDescription(status int) string {
	return "Status code " + strconv.Itoa(status)
}

// buildTags aggregates every tag named by any operation, sorted, with a
// description taken from explicit overrides or else synthesized from the
// tag's own name via a Unicode-aware title-casing of its separators.
func buildTags(ops []opregistry.Operation, overrides map[string]string) []*openapi.Tag {
	seen := make(map[string]bool)
	var names []string
	for _, op := range ops {
		for _, t := range op.Tags {
			if !seen[t] {
				seen[t] = true
				names = append(names, t)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	tags := make([]*openapi.Tag, 0, len(names))
	for _, name := range names {
		desc := overrides[name]
		if desc == "" {
			desc = naming.ToDisplayTitle(name)
		}
		tags = append(tags, &openapi.Tag{Name: name, Description: desc})
	}
	return tags
}
