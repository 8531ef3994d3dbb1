package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/kbukum/sitekit/errors"
)

type testConfig struct {
	Title  string `mapstructure:"title"`
	GitHub struct {
		Token    string        `mapstructure:"token"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"github"`
	MaxParallel int  `mapstructure:"max_parallel"`
	Validate    bool `mapstructure:"validate"`
}

func (c *testConfig) ApplyDefaults() {
	if c.MaxParallel == 0 {
		c.MaxParallel = 4
	}
}

func (c *testConfig) Validate() error {
	if c.Title == "" {
		return errors.Validation("title: is required")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
title: Discover .NET
github:
  token: from-file
  cache_ttl: 5m
`)

	var cfg testConfig
	if err := LoadConfig("sitegen", &cfg, WithConfigFile(path), WithEnvPrefix("SITEGEN_TEST")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Title != "Discover .NET" {
		t.Errorf("expected title from file, got %q", cfg.Title)
	}
	if cfg.GitHub.Token != "from-file" || cfg.GitHub.CacheTTL != 5*time.Minute {
		t.Errorf("unexpected github block: %+v", cfg.GitHub)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "title: from-file\ngithub:\n  token: from-file\n")
	t.Setenv("SITEGEN_TEST_GITHUB_TOKEN", "from-env")
	t.Setenv("SITEGEN_TEST_MAX_PARALLEL", "8")
	t.Setenv("SITEGEN_TEST_VALIDATE", "true")
	t.Setenv("GITHUB_TOKEN", "unprefixed")

	var cfg testConfig
	if err := LoadConfig("sitegen", &cfg, WithConfigFile(path), WithEnvPrefix("SITEGEN_TEST_")); err != nil {
		t.Fatal(err)
	}
	if cfg.GitHub.Token != "from-env" {
		t.Errorf("expected env override, got %q", cfg.GitHub.Token)
	}
	if cfg.MaxParallel != 8 || !cfg.Validate {
		t.Errorf("expected weakly typed env values, got %+v", cfg)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "title: x\n")
	envPath := writeFile(t, dir, ".env", "SITEGEN_DOTENV_GITHUB_CACHE_TTL=90s\n")
	t.Cleanup(func() { os.Unsetenv("SITEGEN_DOTENV_GITHUB_CACHE_TTL") })

	var cfg testConfig
	err := LoadConfig("sitegen", &cfg, WithConfigFile(path), WithEnvFile(envPath), WithEnvPrefix("SITEGEN_DOTENV"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GitHub.CacheTTL != 90*time.Second {
		t.Errorf("expected cache_ttl from .env, got %v", cfg.GitHub.CacheTTL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("sitegen", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("SITEGEN_NONE"),
		WithDefault("title", "default title"),
		WithDefault("github.cache_ttl", "10m"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "default title" || cfg.GitHub.CacheTTL != 10*time.Minute {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("sitegen", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "title: [unclosed\n")
	var cfg testConfig
	if err := LoadConfig("sitegen", &cfg, WithConfigFile(path)); !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoad_AppliesDefaultsAndValidates(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "title: ok\n")
	cfg, err := Load[testConfig]("sitegen", WithConfigFile(path), WithEnvPrefix("SITEGEN_NONE"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxParallel != 4 {
		t.Errorf("expected defaults applied, got %d", cfg.MaxParallel)
	}

	empty := writeFile(t, t.TempDir(), "config.yml", "github:\n  token: x\n")
	if _, err := Load[testConfig]("sitegen", WithConfigFile(empty), WithEnvPrefix("SITEGEN_NONE")); err == nil {
		t.Error("expected validation error")
	}
}

func TestConfigResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/config.yml": true,
		"./config.yml":        true,
		"./config/.env":       true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("sitegen", LoaderConfig{})
	if files.ConfigFile != "./config.yml" {
		t.Errorf("expected ./config.yml to win, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("expected ./config/.env, got %q", files.EnvFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("GITHUB_CACHE_TTL")
	for _, want := range []string{"github_cache_ttl", "github.cache.ttl", "github.cache_ttl"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected %q in %v", want, got)
		}
	}
	if got := generateEnvKeyVariants("VALIDATE"); len(got) != 1 || got[0] != "validate" {
		t.Errorf("unexpected variants %v", got)
	}
}
