// Package resultcollector implements CallResult and the six concrete
// ResultCollector strategies: Json, OptionalJson, Text, Bytes, Empty, Raw.
package resultcollector

import (
	"net/http"
	"sync/atomic"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/params"
	"github.com/oastrace/oastrace/reqbody"
)

// OperationKey identifies an operation by its raw path template and HTTP
// method.
type OperationKey struct {
	Method       string
	PathTemplate string
}

// CallResult is the ephemeral result of one HTTP exchange, produced once
// per ApiCall execution and consumed by exactly one ResultCollector.
// Consumption is move-like: calling a second collector on the same
// CallResult fails with a CollectorError of kind CollectorDoubleCollect.
type CallResult struct {
	Status      int
	Headers     http.Header
	BodyBytes   []byte
	ContentType string

	OperationKey        OperationKey
	Params              []params.Entry
	RequestBody         *reqbody.Encoding
	Tags                []string
	Description         string
	ResponseDescription string
	OperationID         string
	WithoutCollection   bool

	sink     chan<- Observation
	consumed atomic.Bool
}

// NewCallResult constructs a CallResult ready for exactly one collector
// call. sink may be nil, in which case observations are silently dropped
// (matching an ApiClient that has already shut its channel down).
func NewCallResult(status int, headers http.Header, body []byte, contentType string, key OperationKey, sink chan<- Observation) *CallResult {
	return &CallResult{
		Status:       status,
		Headers:      headers,
		BodyBytes:    body,
		ContentType:  contentType,
		OperationKey: key,
		sink:         sink,
	}
}

// take marks the CallResult consumed, returning a CollectorError if it
// was already consumed.
func (r *CallResult) take() error {
	if !r.consumed.CompareAndSwap(false, true) {
		return &apierrors.CollectorError{
			Kind:    apierrors.CollectorDoubleCollect,
			Message: "CallResult already consumed by a previous collector",
		}
	}
	return nil
}

// emit sends obs to the sink non-blockingly; a closed or nil sink is not
// an error, matching spec §4.5: "Sending is non-blocking; if the sink is
// closed (end of run) the collector returns success but silently drops."
func (r *CallResult) emit(obs Observation) {
	if r.sink == nil || obs.WithoutCollection {
		return
	}
	defer func() { recover() }() //nolint:errcheck // send on closed channel
	select {
	case r.sink <- obs:
	default:
	}
}

// Observation is the immutable record a successful collector emits onto
// the observation channel, destined for the single-writer handler that
// folds it into SchemaRegistry and OperationRegistry.
type Observation struct {
	Key               OperationKey
	Params            []params.Entry
	RequestBody       *reqbody.Encoding
	Response          ResponseObservation
	Tags              []string
	Description       string
	OperationID       string
	WithoutCollection bool
}

// ResponseObservation is the response half of an Observation.
type ResponseObservation struct {
	Status      int
	ContentType string
	Schema      *openapi.Schema
	SchemaName  string
	SchemaTree  map[string]*openapi.Schema
	Example     any
	Description string
}

func (r *CallResult) observation(resp ResponseObservation) Observation {
	if resp.Description == "" {
		resp.Description = r.ResponseDescription
	}
	return Observation{
		Key:               r.OperationKey,
		Params:            r.Params,
		RequestBody:       r.RequestBody,
		Response:          resp,
		Tags:              r.Tags,
		Description:       r.Description,
		OperationID:       r.OperationID,
		WithoutCollection: r.WithoutCollection,
	}
}
