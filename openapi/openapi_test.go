package openapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/openapi"
)

func TestPathItemSetOperationAndLookupCaseInsensitive(t *testing.T) {
	pi := &openapi.PathItem{}
	op := &openapi.Operation{OperationID: "listPets"}

	pi.SetOperation("get", op)

	require.Equal(t, op, pi.Get)
	assert.Equal(t, op, pi.Operation("GET"))
	assert.Equal(t, op, pi.Operation("get"))
	assert.Nil(t, pi.Operation("post"))
}

func TestPathItemOperationsCollectsOnlyRegistered(t *testing.T) {
	pi := &openapi.PathItem{}
	pi.SetOperation("GET", &openapi.Operation{OperationID: "listPets"})
	pi.SetOperation("POST", &openapi.Operation{OperationID: "createPet"})

	ops := pi.Operations()

	assert.Len(t, ops, 2)
	assert.Equal(t, "listPets", ops["GET"].OperationID)
	assert.Equal(t, "createPet", ops["POST"].OperationID)
}

func TestSchemaIsEmpty(t *testing.T) {
	assert.True(t, (&openapi.Schema{}).IsEmpty())
	assert.True(t, (*openapi.Schema)(nil).IsEmpty())
	assert.False(t, (&openapi.Schema{Type: "string"}).IsEmpty())
	assert.False(t, (&openapi.Schema{Ref: "#/components/schemas/Pet"}).IsEmpty())
}

func TestComponentsPutSchemaLazilyAllocates(t *testing.T) {
	c := &openapi.Components{}
	c.PutSchema("Pet", &openapi.Schema{Type: "object"})

	require.NotNil(t, c.Schemas)
	assert.Equal(t, "object", c.Schemas["Pet"].Type)

	c.PutSchema("Pet", &openapi.Schema{Type: "string"})
	assert.Equal(t, "string", c.Schemas["Pet"].Type)
}

func TestMarshalYAMLRoundTripsBasicDocument(t *testing.T) {
	doc := &openapi.Document{
		OpenAPI: "3.1.0",
		Info:    &openapi.Info{Title: "Example", Version: "1.0.0"},
		Paths: openapi.Paths{
			"/pets": &openapi.PathItem{
				Get: &openapi.Operation{
					OperationID: "listPets",
					Responses: openapi.Responses{
						"200": &openapi.Response{Description: "ok"},
					},
				},
			},
		},
	}

	data, err := openapi.MarshalYAML(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.1.0")
	assert.Contains(t, string(data), "listPets")
}
