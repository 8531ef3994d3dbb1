package httpclient

import (
	"fmt"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.Name != "http" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{Timeout: 10 * time.Second, Name: "github"}
	cfg.ApplyDefaults()
	if cfg.Timeout != 10*time.Second || cfg.Name != "github" {
		t.Errorf("defaults overwrote config: %+v", cfg)
	}
}

func TestConfig_Validate_InvalidTimeout(t *testing.T) {
	cfg := Config{Timeout: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		t.Error("expected positive MaxAttempts")
	}
	if !cfg.RetryIf(ClassifyStatusCode(502, nil)) {
		t.Error("502 should be retried")
	}
	if !cfg.RetryIf(NewTimeoutError(fmt.Errorf("deadline"))) {
		t.Error("timeouts should be retried")
	}
	if cfg.RetryIf(ClassifyStatusCode(429, nil)) {
		t.Error("rate limits are waited out by the caller, not retried")
	}
	if cfg.RetryIf(ClassifyStatusCode(401, nil)) {
		t.Error("401 should not be retried")
	}
}
