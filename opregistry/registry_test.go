package opregistry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastrace/oastrace/opregistry"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/paramstyle"
	"github.com/oastrace/oastrace/params"
	"github.com/oastrace/oastrace/reqbody"
	"github.com/oastrace/oastrace/resultcollector"
)

func baseObservation() resultcollector.Observation {
	return resultcollector.Observation{
		Key: resultcollector.OperationKey{Method: "GET", PathTemplate: "/pets/{id}"},
		Params: []params.Entry{
			{Name: "id", Location: paramstyle.Path, Style: paramstyle.Simple, Required: true, Schema: &openapi.Schema{Type: "integer"}},
		},
		Response: resultcollector.ResponseObservation{
			Status:      200,
			ContentType: "application/json",
			Schema:      &openapi.Schema{Type: "object"},
			SchemaName:  "Pet",
		},
		Tags:        []string{"pets"},
		Description: "Get a pet",
		OperationID: "getPet",
	}
}

func TestObserveCreatesOperationOnFirstSight(t *testing.T) {
	reg := opregistry.New(nil)
	reg.Observe(baseObservation())

	ops := reg.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, "GET", ops[0].Method)
	assert.Equal(t, "/pets/{id}", ops[0].PathTemplate)
	assert.Equal(t, "getPet", ops[0].OperationID)
	require.Len(t, ops[0].Params, 1)
	assert.True(t, ops[0].Params[0].Required)
}

func TestObserveRelaxesRequiredOnConflictingObservation(t *testing.T) {
	reg := opregistry.New(nil)
	reg.Observe(baseObservation())

	second := baseObservation()
	second.Params[0].Required = false
	reg.Observe(second)

	ops := reg.Operations()
	require.Len(t, ops, 1)
	assert.False(t, ops[0].Params[0].Required)
}

func TestObserveUnifiesOptionalParamOntoSupersetSchema(t *testing.T) {
	reg := opregistry.New(nil)
	first := baseObservation()
	first.Params[0].Required = false
	first.Params[0].Schema = &openapi.Schema{Type: "object", Properties: map[string]*openapi.Schema{
		"name": {Type: "string"},
	}}
	reg.Observe(first)

	second := baseObservation()
	second.Params[0].Required = false
	second.Params[0].Schema = &openapi.Schema{Type: "object", Required: []string{"name"}, Properties: map[string]*openapi.Schema{
		"name": {Type: "string"},
	}}
	reg.Observe(second)

	ops := reg.Operations()
	require.Len(t, ops, 1)
	require.Len(t, ops[0].Params, 1)
	assert.False(t, ops[0].Params[0].Contradiction)
	assert.Empty(t, ops[0].Params[0].Schema.Required, "the broader, non-required-field schema should win")
}

func TestObserveFlagsContradictionOnIncompatibleRequiredParamSchemas(t *testing.T) {
	reg := opregistry.New(nil)
	first := baseObservation()
	first.Params[0].Required = true
	first.Params[0].Schema = &openapi.Schema{Type: "integer"}
	reg.Observe(first)

	second := baseObservation()
	second.Params[0].Required = true
	second.Params[0].Schema = &openapi.Schema{Type: "string"}
	reg.Observe(second)

	ops := reg.Operations()
	require.Len(t, ops, 1)
	require.Len(t, ops[0].Params, 1)
	assert.True(t, ops[0].Params[0].Contradiction)
}

func TestObserveComposesOneOfOnDifferingResponseSchema(t *testing.T) {
	reg := opregistry.New(nil)
	reg.Observe(baseObservation())

	second := baseObservation()
	second.Response.Schema = &openapi.Schema{Type: "string"}
	reg.Observe(second)

	ops := reg.Operations()
	require.Len(t, ops, 1)
	require.Len(t, ops[0].Responses, 1)
	assert.Len(t, ops[0].Responses[0].Schema.OneOf, 2)
}

func TestObserveMergesRequestBodiesByContentType(t *testing.T) {
	reg := opregistry.New(nil)
	obs := baseObservation()
	obs.RequestBody = &reqbody.Encoding{ContentType: "application/json", Schema: &openapi.Schema{Type: "object"}, SchemaName: "NewPet"}
	reg.Observe(obs)

	ops := reg.Operations()
	require.Len(t, ops[0].Bodies, 1)
	assert.Equal(t, "application/json", ops[0].Bodies[0].ContentType)
}

func TestObserveUnionsTagsPreservingOrder(t *testing.T) {
	reg := opregistry.New(nil)
	first := baseObservation()
	first.Tags = []string{"pets", "public"}
	reg.Observe(first)

	second := baseObservation()
	second.Tags = []string{"public", "admin"}
	reg.Observe(second)

	ops := reg.Operations()
	assert.Equal(t, []string{"pets", "public", "admin"}, ops[0].Tags)
}

func TestObserveDisambiguatesCollidingOperationID(t *testing.T) {
	reg := opregistry.New(nil)
	reg.Observe(baseObservation())

	other := baseObservation()
	other.Key = resultcollector.OperationKey{Method: "GET", PathTemplate: "/owners/{id}/pet"}
	other.OperationID = "getPet"
	reg.Observe(other)

	ops := reg.Operations()
	require.Len(t, ops, 2)

	ids := map[string]bool{}
	for _, op := range ops {
		ids[op.OperationID] = true
	}
	assert.Len(t, ids, 2)
}

func TestOperationsAreSortedByPathThenMethod(t *testing.T) {
	reg := opregistry.New(nil)

	a := baseObservation()
	a.Key = resultcollector.OperationKey{Method: "POST", PathTemplate: "/a"}
	reg.Observe(a)

	b := baseObservation()
	b.Key = resultcollector.OperationKey{Method: "GET", PathTemplate: "/a"}
	reg.Observe(b)

	ops := reg.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, "GET", ops[0].Method)
	assert.Equal(t, "POST", ops[1].Method)
}
