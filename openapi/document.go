// Package openapi defines the OpenAPI 3.1 document object model that the
// rest of oastrace accumulates into and serializes from. It is a pure data
// model: no parsing, no validation against the meta-schema, no version
// negotiation with 2.0/3.0 documents. Everything here follows the 3.1
// object names and field names as written in the specification at
// https://spec.openapis.org/oas/v3.1.0.html.
package openapi

// Document is the root OpenAPI Object.
type Document struct {
	OpenAPI           string                `yaml:"openapi" json:"openapi"`
	Info              *Info                 `yaml:"info" json:"info"`
	JSONSchemaDialect string                `yaml:"jsonSchemaDialect,omitempty" json:"jsonSchemaDialect,omitempty"`
	Servers           []*Server             `yaml:"servers,omitempty" json:"servers,omitempty"`
	Paths             Paths                 `yaml:"paths,omitempty" json:"paths,omitempty"`
	Webhooks          map[string]*PathItem  `yaml:"webhooks,omitempty" json:"webhooks,omitempty"`
	Components        *Components           `yaml:"components,omitempty" json:"components,omitempty"`
	Security          []SecurityRequirement `yaml:"security,omitempty" json:"security,omitempty"`
	Tags              []*Tag                `yaml:"tags,omitempty" json:"tags,omitempty"`
	ExternalDocs      *ExternalDocs         `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`

	// Extra captures specification extensions (fields starting with "x-").
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Info provides metadata about the API.
type Info struct {
	Title          string   `yaml:"title" json:"title"`
	Summary        string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	TermsOfService string   `yaml:"termsOfService,omitempty" json:"termsOfService,omitempty"`
	Contact        *Contact `yaml:"contact,omitempty" json:"contact,omitempty"`
	License        *License `yaml:"license,omitempty" json:"license,omitempty"`
	Version        string   `yaml:"version" json:"version"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// Contact holds contact information for the exposed API.
type Contact struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// License holds license information for the exposed API.
type License struct {
	Name       string `yaml:"name" json:"name"`
	Identifier string `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	URL        string `yaml:"url,omitempty" json:"url,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// Server represents a server hosting the API.
type Server struct {
	URL         string                     `yaml:"url" json:"url"`
	Description string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Variables   map[string]*ServerVariable `yaml:"variables,omitempty" json:"variables,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// ServerVariable represents a substitution value for a Server URL template.
type ServerVariable struct {
	Enum        []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Default     string   `yaml:"default" json:"default"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// Tag adds metadata to a single tag used by Operation.Tags.
type Tag struct {
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description,omitempty" json:"description,omitempty"`
	ExternalDocs *ExternalDocs `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// ExternalDocs points to external documentation for a tag or operation.
type ExternalDocs struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	URL         string `yaml:"url" json:"url"`

	Extra map[string]any `yaml:",inline" json:"-"`
}
