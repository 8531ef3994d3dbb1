package foundation

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/github"
	"github.com/kbukum/sitekit/httpclient"
)

// entry is a member listed either as {owner, name} or as a repository URL.
type entry Project

func (e *entry) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		return e.fromURL(url)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = entry(p)
	return nil
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return e.fromURL(node.Value)
	}
	var p Project
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = entry(p)
	return nil
}

func (e *entry) fromURL(raw string) error {
	repo, ok := github.ParseRepository(raw)
	if !ok {
		return fmt.Errorf("not a GitHub repository URL: %q", raw)
	}
	*e = entry{Owner: repo.Owner, Name: repo.Name}
	return nil
}

func toProjects(entries []entry) []Project {
	out := make([]Project, 0, len(entries))
	for _, e := range entries {
		if e.Owner == "" || e.Name == "" {
			continue
		}
		out = append(out, Project(e))
	}
	return out
}

// HTTPSource fetches a JSON array of members.
type HTTPSource struct {
	URL  string
	http *httpclient.Adapter
}

// NewHTTPSource creates a source reading url. Transient failures are retried.
func NewHTTPSource(url string, opts ...httpclient.Option) (*HTTPSource, error) {
	adapter, err := httpclient.New(httpclient.Config{
		Name:  "foundation",
		Retry: httpclient.DefaultRetryConfig(),
	}, opts...)
	if err != nil {
		return nil, errors.Configuration("foundation source: %v", err)
	}
	return &HTTPSource{URL: url, http: adapter}, nil
}

func (s *HTTPSource) Load(ctx context.Context) ([]Project, error) {
	resp, err := s.http.Do(ctx, httpclient.Request{
		Path:    s.URL,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, errors.ExternalServiceError("foundation", err).WithDetail("url", s.URL)
	}
	var entries []entry
	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, errors.InvalidFormat(s.URL, "JSON list of projects").WithCause(err)
	}
	return toProjects(entries), nil
}

// FileSource reads a YAML list of members from a file system.
type FileSource struct {
	FS   fs.FS
	Path string
}

// NewFileSource reads path relative to the working directory.
func NewFileSource(path string) *FileSource {
	return &FileSource{FS: os.DirFS("."), Path: path}
}

func (s *FileSource) Load(_ context.Context) ([]Project, error) {
	data, err := fs.ReadFile(s.FS, s.Path)
	if err != nil {
		return nil, errors.NotFound("foundation project list", s.Path).WithCause(err)
	}
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.InvalidFormat(s.Path, "YAML list of projects").WithCause(err)
	}
	return toProjects(entries), nil
}
