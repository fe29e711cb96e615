package assembler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/assembler"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/opregistry"
	"github.com/oastrace/oastrace/schemaregistry"
)

func buildTestDoc(t *testing.T) *openapi.Document {
	ref := func(name string) *openapi.Schema { return &openapi.Schema{Ref: "#/components/schemas/" + name} }
	ops := []opregistry.Operation{
		{
			Method: "GET", PathTemplate: "/users", Tags: []string{"users"},
			Responses: []opregistry.ResponseSpec{{Status: 200, ContentType: "application/json", SchemaName: "User", Schema: ref("User")}},
		},
		{
			Method: "GET", PathTemplate: "/orders", Tags: []string{"orders"},
			Responses: []opregistry.ResponseSpec{
				{Status: 200, ContentType: "application/json", SchemaName: "Order", Schema: ref("Order")},
				{Status: 400, ContentType: "application/json", SchemaName: "Error", Schema: ref("Error")},
			},
		},
		{
			Method: "GET", PathTemplate: "/users/{id}/orders", Tags: []string{"users", "orders"},
			Responses: []opregistry.ResponseSpec{{Status: 400, ContentType: "application/json", SchemaName: "Error", Schema: ref("Error")}},
		},
	}
	schemas := schemaregistry.New(nil)
	schemas.Put("User", &openapi.Schema{Type: "object"})
	schemas.Put("Order", &openapi.Schema{Type: "object"})
	schemas.Put("Error", &openapi.Schema{Type: "object"})

	doc, err := assembler.New(&openapi.Info{Title: "t", Version: "1"}).Build(ops, schemas, nil)
	require.NoError(t, err)
	return doc
}

func TestSplitByTagPutsSingleTagSchemasInTheirOwnFile(t *testing.T) {
	doc := buildTestDoc(t)

	result := assembler.SplitByTag(doc, "common.yaml")
	require.False(t, len(result.Fragments) == 0, "expected splitting to occur")

	var usersFragment, ordersFragment, commonFragment *assembler.Fragment
	for i := range result.Fragments {
		f := &result.Fragments[i]
		switch f.Path {
		case "users.yaml":
			usersFragment = f
		case "orders.yaml":
			ordersFragment = f
		case "common.yaml":
			commonFragment = f
		}
	}

	require.NotNil(t, usersFragment)
	assert.Contains(t, usersFragment.Components.Schemas, "User")

	require.NotNil(t, ordersFragment)
	assert.Contains(t, ordersFragment.Components.Schemas, "Order")

	require.NotNil(t, commonFragment)
	assert.Contains(t, commonFragment.Components.Schemas, "Error")

	mainRef := result.Main.Components.Schemas["User"]
	require.NotNil(t, mainRef)
	assert.Equal(t, "users.yaml#/components/schemas/User", mainRef.Ref)
}

func TestSplitByTagReturnsUnsplitWhenDocHasNoComponents(t *testing.T) {
	doc := &openapi.Document{
		OpenAPI: "3.1.0",
		Info:    &openapi.Info{Title: "t", Version: "1"},
	}

	result := assembler.SplitByTag(doc, "common.yaml")
	assert.Empty(t, result.Fragments)
	assert.Same(t, doc, result.Main)
}
