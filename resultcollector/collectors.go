package resultcollector

import (
	"reflect"

	json "github.com/segmentio/encoding/json"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/typeoracle"
)

// Json decodes the response body as JSON into a T, describing T's schema
// via oracle and emitting an Observation on success.
func Json[T any](result *CallResult, oracle typeoracle.Describe) (T, error) {
	var out T
	if err := result.take(); err != nil {
		return out, err
	}

	if len(result.BodyBytes) == 0 {
		return out, &apierrors.CollectorError{
			Kind:    apierrors.CollectorEmptyBody,
			Message: "Json collector received an empty response body",
		}
	}
	if err := json.Unmarshal(result.BodyBytes, &out); err != nil {
		return out, &apierrors.CollectorError{
			Kind:    apierrors.CollectorDeserialize,
			Message: "failed to decode response body as JSON",
			Cause:   err,
		}
	}

	name, schema, tree, err := describeWithTree(oracle, out)
	if err != nil {
		return out, err
	}
	result.emit(result.observation(ResponseObservation{
		Status:      result.Status,
		ContentType: result.ContentType,
		Schema:      schema,
		SchemaName:  name,
		SchemaTree:  tree,
		Example:     out,
	}))
	return out, nil
}

// OptionalJson behaves like Json, except a 204 No Content or empty body is
// treated as a successful nil result rather than a CollectorError.
func OptionalJson[T any](result *CallResult, oracle typeoracle.Describe) (*T, error) {
	if err := result.take(); err != nil {
		return nil, err
	}

	if result.Status == 204 || len(result.BodyBytes) == 0 {
		result.emit(result.observation(ResponseObservation{
			Status:      result.Status,
			ContentType: result.ContentType,
		}))
		return nil, nil
	}

	var out T
	if err := json.Unmarshal(result.BodyBytes, &out); err != nil {
		return nil, &apierrors.CollectorError{
			Kind:    apierrors.CollectorDeserialize,
			Message: "failed to decode response body as JSON",
			Cause:   err,
		}
	}

	name, schema, tree, err := describeWithTree(oracle, out)
	if err != nil {
		return nil, err
	}
	result.emit(result.observation(ResponseObservation{
		Status:      result.Status,
		ContentType: result.ContentType,
		Schema:      schema,
		SchemaName:  name,
		SchemaTree:  tree,
		Example:     out,
	}))
	return &out, nil
}

// describeWithTree resolves out's embeddable $ref schema via Describe
// plus its full component tree via Tree, in one call so every collector
// reports both the same way.
func describeWithTree(oracle typeoracle.Describe, out any) (string, *openapi.Schema, map[string]*openapi.Schema, error) {
	t := reflect.TypeOf(out)
	name, schema, _, err := oracle.Describe(t)
	if err != nil {
		return "", nil, nil, &apierrors.CollectorError{Kind: apierrors.CollectorEncoding, Message: "type oracle failed", Cause: err}
	}
	if name == "" {
		return name, schema, nil, nil
	}
	tree, err := typeoracle.Tree(oracle, t)
	if err != nil {
		return "", nil, nil, &apierrors.CollectorError{Kind: apierrors.CollectorEncoding, Message: "type oracle failed building schema tree", Cause: err}
	}
	return name, schema, tree, nil
}

// Text returns the response body decoded as UTF-8 text.
func Text(result *CallResult) (string, error) {
	if err := result.take(); err != nil {
		return "", err
	}
	text := string(result.BodyBytes)
	result.emit(result.observation(ResponseObservation{
		Status:      result.Status,
		ContentType: result.ContentType,
		Example:     text,
	}))
	return text, nil
}

// Bytes returns the raw response body unmodified.
func Bytes(result *CallResult) ([]byte, error) {
	if err := result.take(); err != nil {
		return nil, err
	}
	body := result.BodyBytes
	result.emit(result.observation(ResponseObservation{
		Status:      result.Status,
		ContentType: result.ContentType,
	}))
	return body, nil
}

// Empty discards the response body, asserting only that the call
// completed; it is the collector of choice for 204/205 responses.
func Empty(result *CallResult) error {
	if err := result.take(); err != nil {
		return err
	}
	result.emit(result.observation(ResponseObservation{
		Status:      result.Status,
		ContentType: result.ContentType,
	}))
	return nil
}

// Raw returns the CallResult itself without consuming it, for callers
// that need direct access to status/headers/body and want to choose a
// further collector (or skip collection) themselves. Raw never emits an
// Observation; the caller remains responsible for doing so.
func Raw(result *CallResult) *CallResult {
	return result
}
