package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/sitekit/resilience"
)

func fastRetry() *resilience.RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	cfg.MaxAttempts = 3
	return cfg
}

func TestAdapter_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL, Retry: fastRetry()})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := a.Do(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 || calls.Load() != 3 {
		t.Errorf("status=%d calls=%d", resp.StatusCode, calls.Load())
	}
}

func TestAdapter_DoesNotRetryRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a, _ := New(Config{BaseURL: srv.URL, Retry: fastRetry()})
	resp, err := a.Do(context.Background(), Request{Path: "/"})
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
	if resp == nil || resp.Header("retry-after") != "30" {
		t.Error("expected response headers alongside the error")
	}
	if rl, ok := RateLimitOf(err); !ok || rl.RetryAfter != 30*time.Second {
		t.Errorf("unexpected rate limit: %+v", rl)
	}
}

func TestAdapter_DefaultHeadersAndTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
	}))
	defer srv.Close()

	a, _ := New(Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"Accept": "application/vnd.github+json"},
		Auth:    TokenSourceAuth(&staticSource{token: "abc"}),
	})
	if _, err := a.Do(context.Background(), Request{Path: "/"}); err != nil {
		t.Fatal(err)
	}
}

func TestAdapter_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, _ := New(Config{BaseURL: srv.URL})
	if _, err := a.Do(ctx, Request{Path: "/"}); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAdapter_FullURLBypassesBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page2" {
			t.Errorf("path = %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	a, _ := New(Config{BaseURL: "http://unused.invalid"})
	if _, err := a.Do(context.Background(), Request{Path: srv.URL + "/page2"}); err != nil {
		t.Fatal(err)
	}
}
