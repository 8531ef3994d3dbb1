package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses a static Bearer token.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthTokenSource fetches a bearer token per request from a TokenSource.
	AuthTokenSource
	// AuthCustom uses a custom authentication function.
	AuthCustom
)

// TokenSource supplies (possibly refreshed) bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Scheme is the Authorization scheme for bearer-style auth. Defaults to "Bearer".
	Scheme string
	// Token is the static token (AuthBearer).
	Token string
	// Username is the basic auth username (AuthBasic).
	Username string
	// Password is the basic auth password (AuthBasic).
	Password string
	// Source yields tokens (AuthTokenSource).
	Source TokenSource
	// Apply is a custom function to modify the request (AuthCustom).
	Apply func(*http.Request) error
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// TokenSourceAuth creates an auth config that asks src for a token on every request.
func TokenSourceAuth(src TokenSource) *AuthConfig {
	return &AuthConfig{Type: AuthTokenSource, Source: src}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request) error) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// apply applies authentication to an HTTP request.
func (a *AuthConfig) apply(req *http.Request) error {
	if a == nil {
		return nil
	}
	scheme := a.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}
	switch a.Type {
	case AuthBearer:
		if a.Token != "" {
			req.Header.Set("Authorization", scheme+" "+a.Token)
		}
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthTokenSource:
		if a.Source == nil {
			return fmt.Errorf("httpclient: token source auth without a source")
		}
		token, err := a.Source.Token(req.Context())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", scheme+" "+token)
	case AuthCustom:
		if a.Apply != nil {
			return a.Apply(req)
		}
	}
	return nil
}
