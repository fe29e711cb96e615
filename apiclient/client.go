// Package apiclient implements ApiClient: the root handle a test suite
// holds for the lifetime of one run. It owns the HTTP transport, the
// TypeOracle, the security scheme registry, and the observation channel
// whose single-writer drain goroutine folds every ApiCall result into
// SchemaRegistry and OperationRegistry without a mutex guarding either.
package apiclient

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oastrace/oastrace/apicall"
	"github.com/oastrace/oastrace/httptransport"
	"github.com/oastrace/oastrace/opregistry"
	"github.com/oastrace/oastrace/resultcollector"
	"github.com/oastrace/oastrace/schemaregistry"
	"github.com/oastrace/oastrace/security"
	"github.com/oastrace/oastrace/statuscodes"
	"github.com/oastrace/oastrace/typeoracle"
)

// Client is ApiClient.
type Client struct {
	baseURL string
	cfg     *config

	auth    *security.Registry
	schemas *schemaregistry.Registry
	ops     *opregistry.Registry

	sink   chan resultcollector.Observation
	eg     *errgroup.Group
	closed bool
}

// New constructs a Client against baseURL and starts its observation
// drain goroutine immediately; Close must be called once the run is
// finished to drain and stop it.
func New(baseURL string, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		baseURL: baseURL,
		cfg:     cfg,
		auth:    security.NewRegistry(),
		schemas: schemaregistry.New(cfg.wash),
		ops:     opregistry.New(cfg.logger),
		sink:    make(chan resultcollector.Observation, cfg.sinkBuffer),
	}

	eg, _ := errgroup.WithContext(context.Background())
	eg.Go(c.drain)
	c.eg = eg
	return c
}

// drain is the single writer of schemas and ops: every Observation any
// concurrently executing ApiCall emits passes through here, one at a
// time, until the sink is closed. A schema conflict never stops the
// drain early — SchemaRegistry records it and keeps going, so later
// observations in the same run are never silently lost; Assembler.Build
// is where conflicts are finally surfaced.
func (c *Client) drain() error {
	for obs := range c.sink {
		c.ops.Observe(obs)

		c.schemas.PutMap(obs.Response.SchemaTree)
		if obs.Response.SchemaName != "" {
			c.schemas.PutExample(obs.Response.SchemaName, obs.Response.Example)
		}

		if obs.RequestBody != nil {
			c.schemas.PutMap(obs.RequestBody.SchemaTree)
			if obs.RequestBody.SchemaName != "" {
				c.schemas.PutExample(obs.RequestBody.SchemaName, obs.RequestBody.Example)
			}
		}
	}
	return nil
}

// Security returns the registry of configured authentication schemes,
// for registering schemes before any calls run.
func (c *Client) Security() *security.Registry { return c.auth }

// RegisterAuth registers s under its own name and returns the Client
// for fluent chaining, e.g. apiclient.New(url).RegisterAuth(scheme).
func (c *Client) RegisterAuth(s security.Scheme) *Client {
	c.auth.Register(s)
	return c
}

// Schemas returns the accumulated SchemaRegistry. Calling it before
// Close has drained every in-flight observation gives an incomplete
// view; Assembler is meant to read it only after Close returns.
func (c *Client) Schemas() *schemaregistry.Registry { return c.schemas }

// Operations returns the accumulated OperationRegistry, subject to the
// same post-Close caveat as Schemas.
func (c *Client) Operations() *opregistry.Registry { return c.ops }

// Call starts a new ApiCall against this client's base URL, transport,
// oracle, observation sink, default auth scheme, and default expected
// status codes. authName selects a registered Security scheme as this
// call's default auth override, leaving the client-wide default in
// place when authName is empty.
func (c *Client) Call(method, rawTemplate string, authName string) *apicall.Call {
	auth := c.cfg.defaultAuth
	if authName != "" {
		if s, ok := c.auth.Get(authName); ok {
			auth = s
		}
	}
	return apicall.New(method, rawTemplate, c.baseURL, c.cfg.transport, c.cfg.oracle, c.sink, auth, c.cfg.defaultExpected)
}

// Oracle returns the TypeOracle this client hands to every ApiCall it
// constructs, for callers that need to describe a type outside of a
// call (e.g. registering a schema the suite never happens to exercise).
func (c *Client) Oracle() typeoracle.Describe { return c.cfg.oracle }

// DefaultExpectedStatusCodes returns the expected-status-codes set new
// calls inherit absent a per-call override.
func (c *Client) DefaultExpectedStatusCodes() *statuscodes.ExpectedStatusCodes { return c.cfg.defaultExpected }

// Transport returns the configured Transport, for a caller assembling
// an ApiCall directly instead of through Call.
func (c *Client) Transport() httptransport.Transport { return c.cfg.transport }

// Close closes the observation sink and waits for the drain goroutine
// to finish folding every already-sent observation into SchemaRegistry
// and OperationRegistry. Schema conflicts are recorded, not raised, so
// Close itself never fails on one; check Schemas().Conflicts(), or let
// Assembler.Build surface them, after Close returns. Close is
// idempotent; calling it twice returns nil on the second call.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.sink)
	return c.eg.Wait()
}
