package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestUpload_CreatesNestedDirectories(t *testing.T) {
	s := newTestStorage(t)
	if err := s.Upload(context.Background(), "feeds/news.atom", strings.NewReader("<feed/>")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.BasePath(), "feeds", "news.atom"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<feed/>" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestUpload_RejectsEscapingPath(t *testing.T) {
	s := newTestStorage(t)
	err := s.Upload(context.Background(), "../outside.txt", strings.NewReader("x"))
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Download(context.Background(), "missing.json")
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestExistsAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	if err := s.Upload(ctx, "a.txt", strings.NewReader("a")); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.Exists(ctx, "a.txt"); err != nil || !ok {
		t.Fatalf("expected a.txt to exist: %v", err)
	}
	if err := s.Delete(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a.txt"); err != nil {
		t.Errorf("deleting a missing file should succeed: %v", err)
	}
	if ok, _ := s.Exists(ctx, "a.txt"); ok {
		t.Error("expected a.txt to be gone")
	}
}

func TestList_PrefixAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	for _, p := range []string{"projects/b.json", "feeds/news.rss", "projects/a.json"} {
		if err := s.Upload(ctx, p, strings.NewReader(p)); err != nil {
			t.Fatal(err)
		}
	}

	files, err := s.List(ctx, "projects/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if files[0].Path != "projects/a.json" || files[1].Path != "projects/b.json" {
		t.Errorf("unexpected order %+v", files)
	}
	if files[0].ContentType != "application/json" {
		t.Errorf("unexpected content type %q", files[0].ContentType)
	}
}

func TestFactory_DefaultsToLocal(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.New(context.Background(), storage.Config{BasePath: dir}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ls, ok := s.(*Storage)
	if !ok {
		t.Fatalf("expected *local.Storage, got %T", s)
	}
	if ls.BasePath() != dir {
		t.Errorf("expected base %q, got %q", dir, ls.BasePath())
	}
}
