// Package apicall implements the ApiCall fluent builder: a terminal
// accumulator of method, template, parameter containers, body, auth
// override, expected status, and metadata, which resolves into a
// CallResult on Execute. Composition order is immaterial; only the
// final state at execution matters.
package apicall

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/httptransport"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/paramstyle"
	"github.com/oastrace/oastrace/params"
	"github.com/oastrace/oastrace/reqbody"
	"github.com/oastrace/oastrace/resultcollector"
	"github.com/oastrace/oastrace/security"
	"github.com/oastrace/oastrace/statuscodes"
	"github.com/oastrace/oastrace/typeoracle"
	"github.com/oastrace/oastrace/urltemplate"
)

// Call is ApiCall: a fluent accumulator for exactly one HTTP exchange.
// Every With* method returns the same *Call for chaining.
type Call struct {
	method   string
	template *urltemplate.Template
	baseURL  string

	transport httptransport.Transport
	oracle    typeoracle.Describe
	sink      chan<- resultcollector.Observation
	expected  *statuscodes.ExpectedStatusCodes

	path   *params.PathParams
	query  *params.QueryParams
	header *params.HeaderParams
	cookie *params.CookieParams

	body         *reqbody.Encoding
	defaultAuth  security.Scheme
	authOverride security.Scheme

	expectedOverride  *statuscodes.ExpectedStatusCodes
	tags              []string
	description       string
	responseDesc      string
	operationID       string
	withoutCollection bool

	err error
}

// New constructs a Call for one (method, rawTemplate) pair. The returned
// Call carries the collaborators it needs from its ApiClient: the
// transport, the TypeOracle, the observation sink, a default auth scheme
// (nil if none configured), and the client's default expected status
// codes.
func New(method, rawTemplate, baseURL string, transport httptransport.Transport, oracle typeoracle.Describe, sink chan<- resultcollector.Observation, defaultAuth security.Scheme, defaultExpected *statuscodes.ExpectedStatusCodes) *Call {
	c := &Call{
		method:      method,
		baseURL:     baseURL,
		transport:   transport,
		oracle:      oracle,
		sink:        sink,
		defaultAuth: defaultAuth,
		expected:    defaultExpected,
		path:        params.NewPathParams(),
		query:       params.NewQueryParams(),
		header:      params.NewHeaderParams(),
		cookie:      params.NewCookieParams(),
	}
	tmpl, err := urltemplate.Parse(rawTemplate)
	if err != nil {
		c.err = err
		return c
	}
	c.template = tmpl
	return c
}

func (c *Call) fail(err error) *Call {
	if c.err == nil {
		c.err = err
	}
	return c
}

// WithPath adds a path parameter. Path parameters are always required
// and default to Simple style, per OpenAPI 3.1.
func (c *Call) WithPath(name string, value any, opts ...ParamOption) *Call {
	put := func(e params.Entry) error { c.path.Put(e); return nil }
	return c.withParam(put, name, paramstyle.Path, value, opts)
}

// WithQuery adds a query parameter, defaulting to Form style.
func (c *Call) WithQuery(name string, value any, opts ...ParamOption) *Call {
	put := func(e params.Entry) error { c.query.Put(e); return nil }
	return c.withParam(put, name, paramstyle.Query, value, opts)
}

// WithHeader adds a header parameter, defaulting to Simple style.
func (c *Call) WithHeader(name string, value any, opts ...ParamOption) *Call {
	return c.withParam(c.header.Put, name, paramstyle.Header, value, opts)
}

// WithCookie adds a cookie parameter, defaulting to Form style.
func (c *Call) WithCookie(name string, value any, opts ...ParamOption) *Call {
	put := func(e params.Entry) error { c.cookie.Put(e); return nil }
	return c.withParam(put, name, paramstyle.Cookie, value, opts)
}

func (c *Call) withParam(put func(params.Entry) error, name string, loc paramstyle.Location, value any, opts []ParamOption) *Call {
	if c.err != nil {
		return c
	}
	cfg := resolveParamOpts(loc, opts)

	pv, schema, err := c.describeValue(value)
	if err != nil {
		return c.fail(err)
	}

	wire, err := paramstyle.Serialize(name, pv, cfg.style, cfg.explode)
	if err != nil {
		return c.fail(err)
	}
	if err := paramstyle.Validate(name, cfg.style, loc); err != nil {
		return c.fail(err)
	}

	entry := params.Entry{
		Name:     name,
		Location: loc,
		Style:    cfg.style,
		Explode:  cfg.explode,
		Required: cfg.required,
		Schema:   schema,
	}
	switch {
	case cfg.explode && len(pv.Array) > 0 && loc == paramstyle.Query:
		entry.Values = pv.Array
	case pv.Object != nil && loc == paramstyle.Query && (cfg.style == paramstyle.DeepObject || (cfg.style == paramstyle.Form && cfg.explode)):
		entry.Pairs = paramstyle.ObjectPairs(name, pv.Object, cfg.style)
	default:
		entry.WireValue = wire
	}

	if err := put(entry); err != nil {
		return c.fail(err)
	}
	return c
}

// describeValue converts v into a paramstyle.Value plus the schema
// fragment the TypeOracle reports for its Go type.
func (c *Call) describeValue(v any) (paramstyle.Value, *openapi.Schema, error) {
	pv, err := toParamValue(v)
	if err != nil {
		return paramstyle.Value{}, nil, err
	}
	if v == nil || c.oracle == nil {
		return pv, &openapi.Schema{}, nil
	}
	_, schema, _, err := c.oracle.Describe(reflect.TypeOf(v))
	if err != nil {
		return paramstyle.Value{}, nil, &apierrors.ParameterError{Message: "type oracle failed", Cause: err}
	}
	return pv, schema, nil
}

// Json sets a JSON request body.
func (c *Call) Json(v any) *Call { return c.setBody(reqbody.JSON(c.oracle, v)) }

// Form sets an application/x-www-form-urlencoded request body.
func (c *Call) Form(v any) *Call { return c.setBody(reqbody.Form(c.oracle, v)) }

// XML sets an application/xml request body.
func (c *Call) XML(v any) *Call { return c.setBody(reqbody.XML(v)) }

// NDJSON sets an application/x-ndjson request body.
func (c *Call) NDJSON(items []any) *Call { return c.setBody(reqbody.NDJSON(c.oracle, items)) }

// Multipart sets a multipart/form-data request body.
func (c *Call) Multipart(parts []reqbody.Part) *Call { return c.setBody(reqbody.Multipart(parts)) }

// Bytes sets a raw request body with a caller-chosen content type.
func (c *Call) Bytes(data []byte, mimeType string) *Call {
	enc := reqbody.Bytes(data, mimeType)
	c.body = &enc
	return c
}

// Text sets a text/plain request body.
func (c *Call) Text(s string) *Call {
	enc := reqbody.Text(s)
	c.body = &enc
	return c
}

func (c *Call) setBody(enc reqbody.Encoding, err error) *Call {
	if err != nil {
		return c.fail(err)
	}
	c.body = &enc
	return c
}

// WithExpectedStatusCodes overrides the client's default expectation for
// this call only.
func (c *Call) WithExpectedStatusCodes(expected *statuscodes.ExpectedStatusCodes) *Call {
	c.expectedOverride = expected
	return c
}

// WithAuth overrides the client's default auth scheme for this call.
func (c *Call) WithAuth(scheme security.Scheme) *Call {
	c.authOverride = scheme
	return c
}

// WithTag adds a single tag.
func (c *Call) WithTag(tag string) *Call {
	c.tags = append(c.tags, tag)
	return c
}

// WithTags replaces the tag set.
func (c *Call) WithTags(tags ...string) *Call {
	c.tags = tags
	return c
}

// WithDescription sets the operation description.
func (c *Call) WithDescription(description string) *Call {
	c.description = description
	return c
}

// WithResponseDescription sets the description applied to whichever
// status the server actually returns.
func (c *Call) WithResponseDescription(description string) *Call {
	c.responseDesc = description
	return c
}

// WithOperationID sets the operation ID.
func (c *Call) WithOperationID(id string) *Call {
	c.operationID = id
	return c
}

// WithoutCollection excludes this call from OpenAPI collection while
// still executing it normally — useful for health checks and test
// setup/teardown calls.
func (c *Call) WithoutCollection() *Call {
	c.withoutCollection = true
	return c
}

// Execute performs the HTTP round-trip and returns a CallResult, not yet
// observed — observation happens only when a ResultCollector consumes
// the CallResult. If the observed status does not satisfy the call's
// expectation, Execute records no observation for the exchange and
// returns only an UnexpectedStatusCodeError.
func (c *Call) Execute(ctx context.Context) (*resultcollector.CallResult, error) {
	if c.err != nil {
		return nil, c.err
	}

	rawPath, err := c.resolvePath()
	if err != nil {
		return nil, err
	}

	auth := c.authOverride
	if auth == nil {
		auth = c.defaultAuth
	}
	if auth != nil {
		inj, err := auth.Apply(ctx)
		if err != nil {
			return nil, err
		}
		c.applyInjection(inj)
	}

	fullURL, err := c.buildURL(rawPath)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	c.header.ApplyToHTTPHeader(headers)
	if cookieHeader := c.cookie.Header(); cookieHeader != "" {
		headers.Set("Cookie", cookieHeader)
	}

	var bodyBytes []byte
	if c.body != nil {
		bodyBytes = c.body.Bytes
		if c.body.ContentType != "" {
			headers.Set("Content-Type", c.body.ContentType)
		}
	}

	resp, err := c.transport.Send(ctx, httptransport.Request{
		Method:  c.method,
		URL:     fullURL,
		Headers: headers,
		Body:    bodyBytes,
	})
	if err != nil {
		return nil, err
	}

	expected := c.expectedOverride
	if expected == nil {
		expected = c.expected
	}
	if expected == nil {
		expected = statuscodes.Default()
	}

	key := resultcollector.OperationKey{Method: c.method, PathTemplate: c.template.Raw()}
	contentType := resp.Headers.Get("Content-Type")

	if !expected.Contains(resp.StatusCode) {
		preview := resp.Body
		if len(preview) > 256 {
			preview = preview[:256]
		}
		return nil, &apierrors.UnexpectedStatusCodeError{Expected: expected.String(), Actual: resp.StatusCode, BodyPreview: string(preview)}
	}

	result := resultcollector.NewCallResult(resp.StatusCode, resp.Headers, resp.Body, contentType, key, c.sink)
	result.Params = c.allParams()
	result.RequestBody = c.body
	result.Tags = c.tags
	result.Description = c.description
	result.OperationID = c.operationID
	result.ResponseDescription = c.responseDesc
	result.WithoutCollection = c.withoutCollection
	return result, nil
}

// resolvePath substitutes every path placeholder with its serialized wire
// value. Resolve blanket-percent-encodes the whole substituted value,
// including style punctuation like Label's leading "." or Matrix's ";name="
// — the original implementation's behavior, not an oversight — so no path
// value is passed through as "raw".
func (c *Call) resolvePath() (string, error) {
	values := make(map[string]string, c.path.Len())
	for _, name := range c.path.Names() {
		entry, _ := c.path.Get(name)
		values[name] = entry.WireValue
	}
	return c.template.Resolve(values, nil)
}

func (c *Call) buildURL(resolvedPath string) (string, error) {
	full := c.baseURL + resolvedPath
	if c.query.Len() == 0 {
		return full, nil
	}
	q := url.Values{}
	for _, name := range c.query.Names() {
		entry, _ := c.query.Get(name)
		switch {
		case len(entry.Pairs) > 0:
			for _, kv := range entry.Pairs {
				q.Add(kv.Key, kv.Value)
			}
		case len(entry.Values) > 0:
			for _, v := range entry.Values {
				q.Add(name, v)
			}
		default:
			q.Add(name, entry.WireValue)
		}
	}
	return full + "?" + q.Encode(), nil
}

func (c *Call) applyInjection(inj security.Injection) {
	for key, values := range inj.Header {
		for _, v := range values {
			_ = c.header.Put(params.Entry{Name: key, Location: paramstyle.Header, Style: paramstyle.Simple, WireValue: v})
		}
	}
	for name, v := range inj.Query {
		c.query.Put(params.Entry{Name: name, Location: paramstyle.Query, Style: paramstyle.Form, WireValue: v})
	}
	for name, v := range inj.Cookie {
		c.cookie.Put(params.Entry{Name: name, Location: paramstyle.Cookie, Style: paramstyle.Form, WireValue: v})
	}
}

func (c *Call) allParams() []params.Entry {
	out := make([]params.Entry, 0, c.path.Len()+c.query.Len()+c.header.Len()+c.cookie.Len())
	for _, container := range []*params.Container{c.path.Container, c.query.Container, c.header.Container, c.cookie.Container} {
		for _, name := range container.Names() {
			entry, _ := container.Get(name)
			out = append(out, entry)
		}
	}
	return out
}

func toParamValue(v any) (paramstyle.Value, error) {
	if v == nil {
		return paramstyle.Value{Scalar: ""}, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return paramstyle.Value{Scalar: rv.String()}, nil
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return paramstyle.Value{Scalar: fmt.Sprint(v)}, nil
	case reflect.Slice, reflect.Array:
		elems := make([]string, rv.Len())
		for i := range elems {
			elems[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return paramstyle.Value{Array: elems}, nil
	case reflect.Map:
		obj := make(map[string]string, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[fmt.Sprint(iter.Key().Interface())] = fmt.Sprint(iter.Value().Interface())
		}
		return paramstyle.Value{Object: obj}, nil
	default:
		return paramstyle.Value{}, &apierrors.ParameterError{Message: fmt.Sprintf("unsupported parameter value type %T", v)}
	}
}
