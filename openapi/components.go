package openapi

// Components holds reusable objects referenced by $ref elsewhere in the
// document.
type Components struct {
	Schemas         map[string]*Schema         `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Responses       map[string]*Response       `yaml:"responses,omitempty" json:"responses,omitempty"`
	Parameters      map[string]*Parameter      `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Examples        map[string]*Example        `yaml:"examples,omitempty" json:"examples,omitempty"`
	RequestBodies   map[string]*RequestBody    `yaml:"requestBodies,omitempty" json:"requestBodies,omitempty"`
	Headers         map[string]*Header         `yaml:"headers,omitempty" json:"headers,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `yaml:"securitySchemes,omitempty" json:"securitySchemes,omitempty"`
	Links           map[string]*Link           `yaml:"links,omitempty" json:"links,omitempty"`
	Callbacks       map[string]Callback        `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
	PathItems       map[string]*PathItem       `yaml:"pathItems,omitempty" json:"pathItems,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// ensureSchemas lazily allocates the Schemas map so callers never need a
// nil check before a write.
func (c *Components) ensureSchemas() map[string]*Schema {
	if c.Schemas == nil {
		c.Schemas = make(map[string]*Schema)
	}
	return c.Schemas
}

// PutSchema registers name under Components.Schemas, overwriting any prior
// entry of the same name.
func (c *Components) PutSchema(name string, schema *Schema) {
	c.ensureSchemas()[name] = schema
}
