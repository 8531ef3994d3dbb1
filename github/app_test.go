package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/sitekit/errors"
)

func newAppKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return key, pemBytes
}

// appServer issues installation tokens after checking the app JWT.
func appServer(t *testing.T, key *rsa.PrivateKey, clock *fakeClock, exchanges *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/app/installations/7/access_tokens" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		signed := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims := &gojwt.RegisteredClaims{}
		_, err := gojwt.ParseWithClaims(signed, claims,
			func(*gojwt.Token) (any, error) { return &key.PublicKey, nil },
			gojwt.WithValidMethods([]string{gojwt.SigningMethodRS256.Alg()}),
			gojwt.WithTimeFunc(clock.Now),
		)
		if err != nil {
			t.Errorf("invalid app jwt: %v", err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if claims.Issuer != "42" {
			t.Errorf("expected issuer 42, got %q", claims.Issuer)
		}
		if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != appJWTBackdate+appJWTLifetime {
			t.Errorf("unexpected jwt lifetime %v", got)
		}

		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "ghs_" + strconv.Itoa(int(n)),
			"expires_at": clock.Now().Add(time.Hour).Format(time.RFC3339),
		})
	}))
}

func TestAppTokenSource_ExchangesAndCaches(t *testing.T) {
	key, pemBytes := newAppKey(t)
	clock := newFakeClock()
	var exchanges atomic.Int32
	srv := appServer(t, key, clock, &exchanges)
	defer srv.Close()

	src, err := NewAppTokenSource(AppConfig{
		AppID:          42,
		InstallationID: 7,
		PrivateKey:     pemBytes,
		BaseURL:        srv.URL,
		Clock:          clock,
	})
	if err != nil {
		t.Fatalf("NewAppTokenSource: %v", err)
	}

	first, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if first != "ghs_1" {
		t.Errorf("unexpected token %q", first)
	}

	clock.Advance(30 * time.Minute)
	if tok, _ := src.Token(context.Background()); tok != first {
		t.Errorf("expected cached token, got %q", tok)
	}

	clock.Advance(29*time.Minute + 30*time.Second)
	second, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if second != "ghs_2" || exchanges.Load() != 2 {
		t.Errorf("expected a refresh within a minute of expiry, got %q after %d exchanges", second, exchanges.Load())
	}
}

func TestAppTokenSource_AuthenticatesClient(t *testing.T) {
	key, pemBytes := newAppKey(t)
	clock := newFakeClock()
	var exchanges atomic.Int32
	app := appServer(t, key, clock, &exchanges)
	defer app.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ghs_1" {
			t.Errorf("unexpected auth header %q", got)
		}
		writeIssues(t, w)
	}))
	defer api.Close()

	src, err := NewAppTokenSource(AppConfig{AppID: 42, InstallationID: 7, PrivateKey: pemBytes, BaseURL: app.URL, Clock: clock})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClient(Config{BaseURL: api.URL, Token: "ignored"}, WithClock(clock), WithTokenSource(src))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchAll(context.Background(), "o", "r"); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
}

func TestAppTokenSource_RejectedCredentials(t *testing.T) {
	_, pemBytes := newAppKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src, err := NewAppTokenSource(AppConfig{AppID: 42, InstallationID: 7, PrivateKey: pemBytes, BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.Token(context.Background())
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestNewAppTokenSource_InvalidConfig(t *testing.T) {
	_, pemBytes := newAppKey(t)
	tests := []struct {
		name string
		cfg  AppConfig
	}{
		{"missing app id", AppConfig{InstallationID: 1, PrivateKey: pemBytes}},
		{"missing installation", AppConfig{AppID: 1, PrivateKey: pemBytes}},
		{"bad key", AppConfig{AppID: 1, InstallationID: 1, PrivateKey: []byte("not a key")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAppTokenSource(tt.cfg); !errors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}
