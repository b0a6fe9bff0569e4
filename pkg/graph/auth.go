package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"spupload/pkg/problems"
)

// TokenProvider exchanges app credentials for a Graph bearer token.
type TokenProvider struct {
	authorityHost string
	httpClient    *http.Client
}

func NewTokenProvider(authorityHost string, timeout time.Duration, transport http.RoundTripper) *TokenProvider {
	return &TokenProvider{
		authorityHost: strings.TrimRight(orDefault(authorityHost, DefaultAuthorityHost), "/"),
		httpClient:    NewHTTPClient(timeout, transport),
	}
}

// TokenURL is the v2.0 token endpoint of tenantID.
func (p *TokenProvider) TokenURL(tenantID string) string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", p.authorityHost, tenantID)
}

// Token performs one client-credentials grant for the Graph default scope.
// Any failure is an AuthFailure; there is no retry.
func (p *TokenProvider) Token(ctx context.Context, cred Credential) (string, error) {
	var missing []string
	if cred.TenantID == "" {
		missing = append(missing, "TENANT_ID")
	}
	if cred.ClientID == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if cred.ClientSecret == "" {
		missing = append(missing, "CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return "", problems.Errorf(problems.AuthFailure, "token", "missing credentials: %s", strings.Join(missing, ", "))
	}

	cc := clientcredentials.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		TokenURL:     p.TokenURL(cred.TenantID),
		Scopes:       []string{DefaultScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", problems.Errorf(problems.AuthFailure, "token", "failed to obtain token: %s", describe(err))
	}
	if tok.AccessToken == "" {
		return "", problems.Errorf(problems.AuthFailure, "token", "failed to obtain token: response has no access_token")
	}
	return tok.AccessToken, nil
}

// describe prefers the identity provider's error_description over the raw error.
func describe(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorDescription != "" {
			return re.ErrorDescription
		}
		if re.ErrorCode != "" {
			return re.ErrorCode
		}
	}
	return err.Error()
}
