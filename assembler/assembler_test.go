package assembler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/assembler"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/opregistry"
	"github.com/oastrace/oastrace/schemaregistry"
)

func petSchema() *openapi.Schema {
	return &openapi.Schema{Type: "object", Properties: map[string]*openapi.Schema{
		"name": {Type: "string"},
	}}
}

func TestBuildAssemblesPathsSchemasAndTags(t *testing.T) {
	ops := []opregistry.Operation{
		{
			Method:       "GET",
			PathTemplate: "/pets/{petId}",
			OperationID:  "getPet",
			Tags:         []string{"pet_store"},
			Params: []opregistry.ParamSpec{
				{Name: "petId", Location: "path", Style: "simple", Schema: &openapi.Schema{Type: "integer"}},
			},
			Responses: []opregistry.ResponseSpec{
				{Status: 200, ContentType: "application/json", SchemaName: "Pet", Schema: &openapi.Schema{Ref: "#/components/schemas/Pet"}},
			},
		},
	}

	schemas := schemaregistry.New(nil)
	schemas.Put("Pet", petSchema())

	doc, err := assembler.New(&openapi.Info{Title: "Pet Store", Version: "1.0.0"}).
		Build(ops, schemas, nil)
	require.NoError(t, err)

	assert.Equal(t, "3.1.0", doc.OpenAPI)
	require.Contains(t, doc.Paths, "/pets/{petId}")
	op := doc.Paths["/pets/{petId}"].Get
	require.NotNil(t, op)
	assert.Equal(t, "getPet", op.OperationID)
	require.Len(t, op.Parameters, 1)
	assert.True(t, op.Parameters[0].Required, "path parameters are always required")

	resp := op.Responses["200"]
	require.NotNil(t, resp)
	assert.Equal(t, "Status code 200", resp.Description)
	assert.Equal(t, "#/components/schemas/Pet", resp.Content["application/json"].Schema.Ref)

	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "pet_store", doc.Tags[0].Name)
	assert.Equal(t, "Pet Store", doc.Tags[0].Description)

	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "Pet")
}

func TestBuildUsesObservedResponseDescriptionOverDefault(t *testing.T) {
	ops := []opregistry.Operation{
		{
			Method:       "GET",
			PathTemplate: "/health",
			Responses: []opregistry.ResponseSpec{
				{Status: 204, ContentType: "", Description: "No content"},
			},
		},
	}
	schemas := schemaregistry.New(nil)

	doc, err := assembler.New(&openapi.Info{Title: "t", Version: "1"}).Build(ops, schemas, nil)
	require.NoError(t, err)

	assert.Equal(t, "No content", doc.Paths["/health"].Get.Responses["204"].Description)
}

func TestBuildFailsAssemblyOnUnresolvedRef(t *testing.T) {
	ops := []opregistry.Operation{
		{
			Method:       "GET",
			PathTemplate: "/pets/{petId}",
			Responses: []opregistry.ResponseSpec{
				{Status: 200, ContentType: "application/json", SchemaName: "Pet", Schema: &openapi.Schema{Ref: "#/components/schemas/Pet"}},
			},
		},
	}
	// Pet is never registered in the SchemaRegistry.
	schemas := schemaregistry.New(nil)

	_, err := assembler.New(&openapi.Info{Title: "t", Version: "1"}).Build(ops, schemas, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrAssembly)

	var assemblyErrs apierrors.AssemblyErrors
	require.ErrorAs(t, err, &assemblyErrs)
	require.Len(t, assemblyErrs, 1)
	assert.Contains(t, assemblyErrs[0].Message, "Pet")
}

func TestBuildSurfacesSchemaConflictAsAssemblyError(t *testing.T) {
	ops := []opregistry.Operation{
		{Method: "GET", PathTemplate: "/pets", Tags: []string{"pets"}},
	}
	schemas := schemaregistry.New(nil)
	schemas.Put("Pet", &openapi.Schema{Type: "object"})
	schemas.Put("Pet", &openapi.Schema{Type: "string"})

	_, err := assembler.New(&openapi.Info{Title: "t", Version: "1"}).Build(ops, schemas, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrAssembly)

	var assemblyErrs apierrors.AssemblyErrors
	require.ErrorAs(t, err, &assemblyErrs)
	require.Len(t, assemblyErrs, 1)
	assert.ErrorIs(t, assemblyErrs[0], apierrors.ErrSchemaConflict)
}

func TestDescribeTagOverridesDefaultDisplayTitle(t *testing.T) {
	ops := []opregistry.Operation{
		{Method: "GET", PathTemplate: "/pets", Tags: []string{"pet-store"}},
	}
	schemas := schemaregistry.New(nil)

	doc, err := assembler.New(&openapi.Info{Title: "t", Version: "1"}).
		DescribeTag("pet-store", "Everything about the pet store").
		Build(ops, schemas, nil)
	require.NoError(t, err)

	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "Everything about the pet store", doc.Tags[0].Description)
}
