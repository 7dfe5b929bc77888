package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource wraps an access token obtained by the login flow. The token is
// used as-is: it is never refreshed or validated here, so an expired token
// surfaces as a 401 from the API.
func TokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// NewHTTPClient returns a client that sends accessToken as a bearer token on
// top of base, or http.DefaultClient when base is nil
func NewHTTPClient(ctx context.Context, accessToken string, base *http.Client) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return oauth2.NewClient(ctx, TokenSource(accessToken))
}
