// Package security implements security scheme wiring: HTTP Basic, HTTP
// Bearer, API Key (header/query/cookie), and OAuth2 Client-Credentials
// with live token acquisition during tests. Credential values never
// reach logs or examples — only each scheme's shape is emitted into the
// OpenAPI document's components.securitySchemes.
package security

import (
	"context"
	"net/http"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
	"github.com/oastrace/oastrace/paramstyle"
)

// Injection is the set of header/query/cookie values a Scheme wants
// added to one outgoing call. ApiCall merges it into the call's own
// parameter containers immediately before transport.
type Injection struct {
	Header http.Header
	Query  map[string]string
	Cookie map[string]string
}

func newInjection() Injection {
	return Injection{Header: make(http.Header), Query: map[string]string{}, Cookie: map[string]string{}}
}

// Scheme is one configured authentication mechanism: a canonical name
// bound at registration time, the OpenAPI shape it emits, and the
// per-call credential injection.
type Scheme interface {
	Name() string
	OpenAPI() *openapi.SecurityScheme
	Apply(ctx context.Context) (Injection, error)
}

// Basic implements HTTP Basic authentication (RFC 7617).
type Basic struct {
	name, username, password string
}

// NewBasic registers a Basic scheme under name with static credentials.
func NewBasic(name, username, password string) *Basic {
	return &Basic{name: name, username: username, password: password}
}

func (b *Basic) Name() string { return b.name }

func (b *Basic) OpenAPI() *openapi.SecurityScheme {
	return &openapi.SecurityScheme{Type: "http", Scheme: "basic"}
}

func (b *Basic) Apply(context.Context) (Injection, error) {
	inj := newInjection()
	req := &http.Request{Header: inj.Header}
	req.SetBasicAuth(b.username, b.password)
	return inj, nil
}

// Bearer implements HTTP Bearer authentication (RFC 6750). tokenFn is
// called on every Apply, so a caller can supply either a constant
// pre-acquired token or one that refreshes itself.
type Bearer struct {
	name    string
	tokenFn func(context.Context) (string, error)
}

// NewBearerStatic registers a Bearer scheme with a fixed, pre-acquired
// token — the original implementation's "pre-acquired token" grant
// variant, where no live token exchange happens.
func NewBearerStatic(name, token string) *Bearer {
	return &Bearer{name: name, tokenFn: func(context.Context) (string, error) { return token, nil }}
}

// NewBearerFunc registers a Bearer scheme whose token is produced by fn
// on each call, e.g. to wrap a caller-managed refresh loop.
func NewBearerFunc(name string, fn func(context.Context) (string, error)) *Bearer {
	return &Bearer{name: name, tokenFn: fn}
}

func (b *Bearer) Name() string { return b.name }

func (b *Bearer) OpenAPI() *openapi.SecurityScheme {
	return &openapi.SecurityScheme{Type: "http", Scheme: "bearer"}
}

func (b *Bearer) Apply(ctx context.Context) (Injection, error) {
	token, err := b.tokenFn(ctx)
	if err != nil {
		return Injection{}, &apierrors.ConfigError{Option: "security." + b.name, Message: "failed to acquire bearer token", Cause: err}
	}
	inj := newInjection()
	inj.Header.Set("Authorization", "Bearer "+token)
	return inj, nil
}

// APIKey implements an API key credential carried in a header, query
// parameter, or cookie.
type APIKey struct {
	name      string
	paramName string
	location  paramstyle.Location
	value     string
}

// NewAPIKey registers an API key scheme. location must be Header, Query,
// or Cookie; any other location is a configuration error reported on the
// first Apply call.
func NewAPIKey(name, paramName string, location paramstyle.Location, value string) *APIKey {
	return &APIKey{name: name, paramName: paramName, location: location, value: value}
}

func (k *APIKey) Name() string { return k.name }

func (k *APIKey) OpenAPI() *openapi.SecurityScheme {
	return &openapi.SecurityScheme{Type: "apiKey", Name: k.paramName, In: string(k.location)}
}

func (k *APIKey) Apply(context.Context) (Injection, error) {
	inj := newInjection()
	switch k.location {
	case paramstyle.Header:
		inj.Header.Set(k.paramName, k.value)
	case paramstyle.Query:
		inj.Query[k.paramName] = k.value
	case paramstyle.Cookie:
		inj.Cookie[k.paramName] = k.value
	default:
		return Injection{}, &apierrors.ConfigError{Option: "security." + k.name, Value: string(k.location), Message: "apiKey scheme location must be header, query, or cookie"}
	}
	return inj, nil
}
