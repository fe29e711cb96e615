package security

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/oastrace/oastrace/apierrors"
	"github.com/oastrace/oastrace/openapi"
)

// OAuth2ClientCredentials implements the OAuth2 Client-Credentials grant,
// acquiring and caching an access token for reuse across calls until it
// expires. Caching comes from clientcredentials.Config.TokenSource's own
// reuse-until-expiry wrapper, matching the original implementation's
// token cache without this package reimplementing one.
type OAuth2ClientCredentials struct {
	name     string
	tokenURL string
	scopes   []string
	source   oauth2.TokenSource
}

// NewOAuth2ClientCredentials registers an OAuth2ClientCredentials scheme
// under name, bound to exactly one canonical name as spec.md's Open
// Question resolution requires. The live token is never surfaced in the
// emitted document — only cfg's shape (token URL, scopes) is.
func NewOAuth2ClientCredentials(name string, cfg clientcredentials.Config) *OAuth2ClientCredentials {
	return &OAuth2ClientCredentials{
		name:     name,
		tokenURL: cfg.TokenURL,
		scopes:   cfg.Scopes,
		source:   cfg.TokenSource(context.Background()),
	}
}

func (o *OAuth2ClientCredentials) Name() string { return o.name }

func (o *OAuth2ClientCredentials) OpenAPI() *openapi.SecurityScheme {
	scopes := make(map[string]string, len(o.scopes))
	for _, s := range o.scopes {
		scopes[s] = ""
	}
	return &openapi.SecurityScheme{
		Type: "oauth2",
		Flows: &openapi.OAuthFlows{
			ClientCredentials: &openapi.OAuthFlow{
				TokenURL: o.tokenURL,
				Scopes:   scopes,
			},
		},
	}
}

func (o *OAuth2ClientCredentials) Apply(context.Context) (Injection, error) {
	token, err := o.source.Token()
	if err != nil {
		return Injection{}, &apierrors.ConfigError{Option: "security." + o.name, Message: "failed to acquire OAuth2 client-credentials token", Cause: err}
	}
	inj := newInjection()
	inj.Header.Set("Authorization", token.Type()+" "+token.AccessToken)
	return inj, nil
}
