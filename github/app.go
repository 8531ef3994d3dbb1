package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/httpclient"
	"github.com/kbukum/sitekit/resilience"
)

const (
	appJWTBackdate  = 60 * time.Second
	appJWTLifetime  = 9 * time.Minute
	tokenRefreshGap = time.Minute
)

// AppConfig identifies a GitHub App installation.
type AppConfig struct {
	AppID          int64
	InstallationID int64
	// PrivateKey is the app's PEM-encoded RSA key.
	PrivateKey []byte
	BaseURL    string
	Transport  http.RoundTripper
	Clock      resilience.Clock
}

type installationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AppTokenSource authenticates as a GitHub App installation. It signs a
// short-lived app JWT, exchanges it for an installation token and reuses
// that token until shortly before it expires.
type AppTokenSource struct {
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	http           *httpclient.Adapter
	clock          resilience.Clock

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewAppTokenSource parses the private key and prepares the token exchange.
func NewAppTokenSource(cfg AppConfig) (*AppTokenSource, error) {
	if cfg.AppID == 0 || cfg.InstallationID == 0 {
		return nil, errors.Configuration("github app: app id and installation id are required")
	}
	key, err := gojwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKey)
	if err != nil {
		return nil, errors.Configuration("github app: parse private key: %v", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Clock == nil {
		cfg.Clock = resilience.SystemClock{}
	}

	adapter, err := httpclient.New(httpclient.Config{
		Name:    serviceName,
		BaseURL: cfg.BaseURL,
		Headers: map[string]string{
			"Accept":               "application/vnd.github+json",
			"User-Agent":           defaultUserAgent,
			"X-GitHub-Api-Version": apiVersion,
		},
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, errors.Configuration("github app: %v", err)
	}

	return &AppTokenSource{
		appID:          cfg.AppID,
		installationID: cfg.InstallationID,
		key:            key,
		http:           adapter,
		clock:          cfg.Clock,
	}, nil
}

// Token returns a valid installation token, exchanging a new one when the
// cached token is missing or about to expire.
func (s *AppTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.token != "" && now.Before(s.expires.Add(-tokenRefreshGap)) {
		return s.token, nil
	}

	signed, err := s.appJWT(now)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("sign app jwt: %w", err))
	}

	path := fmt.Sprintf("/app/installations/%d/access_tokens", s.installationID)
	resp, err := httpclient.Post[installationToken](s.http, ctx, path, nil,
		httpclient.WithRequestAuth(httpclient.BearerAuth(signed)))
	if err != nil {
		if httpclient.IsAuth(err) {
			return "", errors.Unauthorized("GitHub rejected the app credentials.").
				WithDetail("installation", s.installationID).WithCause(err)
		}
		return "", err
	}
	if resp.Data.Token == "" {
		return "", errors.ExternalServiceError(serviceName, nil).WithDetail("reason", "empty installation token")
	}

	s.token = resp.Data.Token
	s.expires = resp.Data.ExpiresAt
	return s.token, nil
}

func (s *AppTokenSource) appJWT(now time.Time) (string, error) {
	claims := gojwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(s.appID, 10),
		IssuedAt:  gojwt.NewNumericDate(now.Add(-appJWTBackdate)),
		ExpiresAt: gojwt.NewNumericDate(now.Add(appJWTLifetime)),
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims).SignedString(s.key)
}
