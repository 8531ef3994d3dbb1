package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/sitekit/storage"
)

func newTestStorage(t *testing.T, cfg storage.Config) *Storage {
	t.Helper()
	cfg.AccessKey = "test"
	cfg.SecretKey = "test"
	s, err := NewStorage(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestKey_Prefix(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "feeds/news.atom", "feeds/news.atom"},
		{"site", "feeds/news.atom", "site/feeds/news.atom"},
		{"/site/", "/feeds/news.rss", "site/feeds/news.rss"},
	}
	for _, tt := range tests {
		s := newTestStorage(t, storage.Config{Bucket: "b", Region: "us-east-1", Prefix: tt.prefix})
		if got := s.key(tt.path); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
		if got := s.relative(tt.want); got != strings.TrimPrefix(tt.path, "/") {
			t.Errorf("relative(%q) = %q", tt.want, got)
		}
	}
}

func TestURL_CustomEndpoint(t *testing.T) {
	s := newTestStorage(t, storage.Config{
		Bucket: "site", Region: "us-east-1", Endpoint: "http://localhost:9000/",
	})
	got, err := s.URL(context.Background(), "index.json")
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://localhost:9000/site/index.json" {
		t.Errorf("unexpected URL %q", got)
	}
}

func TestURL_DefaultEndpoint(t *testing.T) {
	s := newTestStorage(t, storage.Config{Bucket: "site", Region: "eu-west-1", Prefix: "www"})
	got, _ := s.URL(context.Background(), "feeds/news.atom")
	if got != "https://s3.eu-west-1.amazonaws.com/site/www/feeds/news.atom" {
		t.Errorf("unexpected URL %q", got)
	}
}
