package foundation

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/kbukum/sitekit/errors"
)

func TestSet_PopulatesOnce(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(SourceFunc(func(context.Context) ([]Project, error) {
		loads.Add(1)
		return []Project{{Owner: "dotnet", Name: "runtime"}}, nil
	}), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := set.Populate(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("expected a single load, got %d", loads.Load())
	}
	if set.Len() != 1 {
		t.Errorf("expected 1 member, got %d", set.Len())
	}
}

func TestSet_IsMemberIsExact(t *testing.T) {
	set := NewSet(SourceFunc(func(context.Context) ([]Project, error) {
		return []Project{{Owner: "dotnet", Name: "runtime"}}, nil
	}), nil)
	if set.IsMember("dotnet", "runtime") {
		t.Error("an unpopulated set has no members")
	}
	if err := set.Populate(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		owner, name string
		want        bool
	}{
		{"dotnet", "runtime", true},
		{"DotNet", "runtime", false},
		{"dotnet", "Runtime", false},
		{"dotnet", "runtime2", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := set.IsMember(tt.owner, tt.name); got != tt.want {
			t.Errorf("IsMember(%q, %q) = %v, want %v", tt.owner, tt.name, got, tt.want)
		}
	}
}

func TestSet_FailedLoadIsRetried(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(SourceFunc(func(context.Context) ([]Project, error) {
		if loads.Add(1) == 1 {
			return nil, stderrors.New("unavailable")
		}
		return []Project{{Owner: "o", Name: "r"}}, nil
	}), nil)

	if err := set.Populate(context.Background()); err == nil {
		t.Fatal("expected first populate to fail")
	}
	if err := set.Populate(context.Background()); err != nil {
		t.Fatalf("second populate: %v", err)
	}
	if !set.IsMember("o", "r") {
		t.Error("expected member after successful retry")
	}
}

func TestHTTPSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"owner": "dotnet", "name": "runtime"},
			"https://github.com/xunit/xunit.git",
			{"owner": "", "name": "skipped"}
		]`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL + "/projects.json")
	if err != nil {
		t.Fatal(err)
	}
	projects, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []Project{{"dotnet", "runtime"}, {"xunit", "xunit"}}
	if len(projects) != len(want) {
		t.Fatalf("expected %v, got %v", want, projects)
	}
	for i := range want {
		if projects[i] != want[i] {
			t.Errorf("project %d: got %v, want %v", i, projects[i], want[i])
		}
	}
}

func TestHTTPSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.ErrorCode
	}{
		{"not found", http.StatusNotFound, "", errors.ErrCodeExternalService},
		{"not json", http.StatusOK, "<html>", errors.ErrCodeInvalidFormat},
		{"bad url", http.StatusOK, `["https://gitlab.com/o/r"]`, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			src, err := NewHTTPSource(srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			_, err = src.Load(context.Background())
			if !errors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestFileSource_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"data/foundation.yml": {Data: []byte(`
- owner: dotnet
  name: runtime
- https://github.com/AvaloniaUI/Avalonia
`)},
	}
	projects, err := (&FileSource{FS: fsys, Path: "data/foundation.yml"}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(projects) != 2 || projects[1] != (Project{Owner: "AvaloniaUI", Name: "Avalonia"}) {
		t.Errorf("unexpected projects: %v", projects)
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := (&FileSource{FS: fstest.MapFS{}, Path: "none.yml"}).Load(context.Background())
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
