package apiclient

import (
	"log/slog"

	"github.com/oastrace/oastrace/httptransport"
	"github.com/oastrace/oastrace/redact"
	"github.com/oastrace/oastrace/security"
	"github.com/oastrace/oastrace/statuscodes"
	"github.com/oastrace/oastrace/typeoracle"
)

// Option customizes a Client at construction time.
type Option func(*config)

type config struct {
	transport       httptransport.Transport
	oracle          typeoracle.Describe
	defaultAuth     security.Scheme
	defaultExpected *statuscodes.ExpectedStatusCodes
	wash            *redact.WashList
	logger          *slog.Logger
	sinkBuffer      int
}

func defaultConfig() *config {
	return &config{
		transport:       httptransport.NewStdlibTransport(nil),
		oracle:          typeoracle.NewReflectOracle(),
		defaultExpected: statuscodes.Default(),
		sinkBuffer:      64,
	}
}

// WithTransport overrides the default net/http-backed Transport, e.g.
// to inject a recording or mocked transport under test.
func WithTransport(t httptransport.Transport) Option {
	return func(c *config) { c.transport = t }
}

// WithOracle overrides the default ReflectOracle, e.g. to opt into
// JSONSchemaGoOracle.
func WithOracle(o typeoracle.Describe) Option {
	return func(c *config) { c.oracle = o }
}

// WithDefaultAuth sets the Scheme every Call inherits absent a per-call
// auth override.
func WithDefaultAuth(s security.Scheme) Option {
	return func(c *config) { c.defaultAuth = s }
}

// WithDefaultExpectedStatusCodes overrides the ExpectedStatusCodes every
// Call inherits absent a per-call override; the client default is
// statuscodes.Default() (every status in [200, 500)) when this option is
// not given.
func WithDefaultExpectedStatusCodes(e *statuscodes.ExpectedStatusCodes) Option {
	return func(c *config) { c.defaultExpected = e }
}

// WithRedaction sets the wash-list SchemaRegistry applies to every
// stored example.
func WithRedaction(wash *redact.WashList) Option {
	return func(c *config) { c.wash = wash }
}

// WithLogger sets the logger OperationRegistry uses for its non-fatal
// style/explode mismatch warnings. slog.Default() is used when this
// option is not given.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithObservationBuffer sets the observation channel's buffer size.
// The default of 64 keeps ApiCall's non-blocking send from dropping
// observations under the concurrency a typical test suite runs with,
// without requiring every caller to tune it.
func WithObservationBuffer(n int) Option {
	return func(c *config) { c.sinkBuffer = n }
}
