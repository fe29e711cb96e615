// Package apierrors provides the structured error taxonomy shared across
// oastrace.
//
// Every error kind is a concrete struct with an Error, Unwrap, and Is
// method so callers can branch with errors.As or check categories with
// errors.Is against the package-level sentinels, without needing to know
// the concrete type up front.
package apierrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrConfig indicates an invalid client or call configuration.
	ErrConfig = errors.New("config error")

	// ErrTemplate indicates a URL template could not be resolved.
	ErrTemplate = errors.New("template error")

	// ErrParameter indicates a parameter value or style is invalid.
	ErrParameter = errors.New("parameter error")

	// ErrBody indicates a request body could not be encoded.
	ErrBody = errors.New("body error")

	// ErrTransport indicates the underlying HTTP transport failed.
	ErrTransport = errors.New("transport error")

	// ErrUnexpectedStatusCode indicates the observed status was not in the
	// expected set.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")

	// ErrCollector indicates a ResultCollector failed to consume a CallResult.
	ErrCollector = errors.New("collector error")

	// ErrSchemaConflict indicates two incompatible schemas share a canonical name.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrAssembly indicates the final OpenAPI document could not be assembled.
	ErrAssembly = errors.New("assembly error")

	// ErrHealthCheck indicates a test server never became healthy within
	// its configured retry budget.
	ErrHealthCheck = errors.New("health check error")
)

// ConfigError represents a malformed base URL, invalid info metadata, or
// other invalid client/call configuration.
type ConfigError struct {
	Option  string
	Value   any
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// TemplateKind distinguishes the Template failure modes named in spec §4.1.
type TemplateKind int

const (
	// TemplateUnbalanced means the raw template had mismatched braces.
	TemplateUnbalanced TemplateKind = iota
	// TemplateMissingParam means a named placeholder had no supplied value.
	TemplateMissingParam
	// TemplateExtraParam means a supplied value had no matching placeholder.
	TemplateExtraParam
)

func (k TemplateKind) String() string {
	switch k {
	case TemplateUnbalanced:
		return "unbalanced braces"
	case TemplateMissingParam:
		return "missing param"
	case TemplateExtraParam:
		return "extra param"
	default:
		return "unknown"
	}
}

// TemplateError represents a URL template parsing or resolution failure.
type TemplateError struct {
	Kind    TemplateKind
	Raw     string
	Param   string
	Message string
}

func (e *TemplateError) Error() string {
	msg := fmt.Sprintf("template error: %s", e.Kind)
	if e.Raw != "" {
		msg += fmt.Sprintf(" in %q", e.Raw)
	}
	if e.Param != "" {
		msg += fmt.Sprintf(" (param %q)", e.Param)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }

// ParameterError represents an invalid parameter style/location pairing, an
// illegal header value, or an unsupported parameter value shape.
type ParameterError struct {
	Name     string
	Location string
	Style    string
	Message  string
	Cause    error
}

func (e *ParameterError) Error() string {
	msg := "parameter error"
	if e.Name != "" {
		msg += fmt.Sprintf(" for %q", e.Name)
	}
	if e.Location != "" {
		msg += " in " + e.Location
	}
	if e.Style != "" {
		msg += " (style " + e.Style + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParameterError) Unwrap() error { return e.Cause }
func (e *ParameterError) Is(target error) bool { return target == ErrParameter }

// BodyError represents a request body serialization failure or an
// unsupported media type.
type BodyError struct {
	ContentType string
	Message     string
	Cause       error
}

func (e *BodyError) Error() string {
	msg := "body error"
	if e.ContentType != "" {
		msg += " (" + e.ContentType + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BodyError) Unwrap() error { return e.Cause }
func (e *BodyError) Is(target error) bool { return target == ErrBody }

// TransportError represents a network, TLS, DNS, or timeout failure from
// the underlying HTTP transport.
type TransportError struct {
	Method string
	URL    string
	Cause  error
}

func (e *TransportError) Error() string {
	msg := "transport error"
	if e.Method != "" && e.URL != "" {
		msg += fmt.Sprintf(" (%s %s)", e.Method, e.URL)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Cause }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// UnexpectedStatusCodeError represents an observed status code outside the
// call's expectation.
type UnexpectedStatusCodeError struct {
	Expected    string
	Actual      int
	BodyPreview string
}

func (e *UnexpectedStatusCodeError) Error() string {
	msg := fmt.Sprintf("unexpected status code: expected %s, got %d", e.Expected, e.Actual)
	if e.BodyPreview != "" {
		msg += fmt.Sprintf(" (body: %s)", e.BodyPreview)
	}
	return msg
}

func (e *UnexpectedStatusCodeError) Is(target error) bool { return target == ErrUnexpectedStatusCode }

// CollectorKind distinguishes the ResultCollector failure modes named in
// spec §4.5.
type CollectorKind int

const (
	// CollectorEmptyBody means a collector that required a body found none.
	CollectorEmptyBody CollectorKind = iota
	// CollectorEncoding means a body could not be decoded as UTF-8.
	CollectorEncoding
	// CollectorDoubleCollect means a CallResult was collected more than once.
	CollectorDoubleCollect
	// CollectorDeserialize means JSON deserialization failed.
	CollectorDeserialize
	// CollectorUnexpectedContentType means the response content-type did not
	// match what the collector required.
	CollectorUnexpectedContentType
)

func (k CollectorKind) String() string {
	switch k {
	case CollectorEmptyBody:
		return "empty body"
	case CollectorEncoding:
		return "encoding error"
	case CollectorDoubleCollect:
		return "double collect"
	case CollectorDeserialize:
		return "deserialize error"
	case CollectorUnexpectedContentType:
		return "unexpected content type"
	default:
		return "unknown"
	}
}

// CollectorError represents a ResultCollector failing to consume a
// CallResult.
type CollectorError struct {
	Kind     CollectorKind
	JSONPath string
	Message  string
	Cause    error
}

func (e *CollectorError) Error() string {
	msg := fmt.Sprintf("collector error: %s", e.Kind)
	if e.JSONPath != "" {
		msg += fmt.Sprintf(" at %s", e.JSONPath)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CollectorError) Unwrap() error { return e.Cause }
func (e *CollectorError) Is(target error) bool { return target == ErrCollector }

// SchemaConflictError represents two structurally different schemas sharing
// a canonical name in the SchemaRegistry.
type SchemaConflictError struct {
	Name     string
	Existing any
	Incoming any
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict: %q has two incompatible shapes", e.Name)
}

func (e *SchemaConflictError) Is(target error) bool { return target == ErrSchemaConflict }

// AssemblyError represents a failure to assemble the final OpenAPI document:
// an unresolved $ref, a duplicate operationID after disambiguation, or a
// merge contradiction between observations.
type AssemblyError struct {
	Path    string
	Message string
	Cause   error
}

func (e *AssemblyError) Error() string {
	msg := "assembly error"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AssemblyError) Unwrap() error { return e.Cause }
func (e *AssemblyError) Is(target error) bool { return target == ErrAssembly }

// HealthCheckError represents a test server that never reported healthy
// before its TestServer's retry budget was exhausted.
type HealthCheckError struct {
	Attempts int
	Elapsed  string
	Cause    error
}

func (e *HealthCheckError) Error() string {
	msg := fmt.Sprintf("health check error: server not healthy after %d attempts (%s)", e.Attempts, e.Elapsed)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *HealthCheckError) Unwrap() error { return e.Cause }
func (e *HealthCheckError) Is(target error) bool { return target == ErrHealthCheck }

// AssemblyErrors collects every AssemblyError found during a single
// assembly pass, so a test run sees every unresolved $ref and every merge
// contradiction at once instead of only the first.
type AssemblyErrors []*AssemblyError

func (e AssemblyErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d assembly errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

func (e AssemblyErrors) Is(target error) bool { return target == ErrAssembly }
