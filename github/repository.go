package github

import (
	"net/url"
	"strings"
)

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string { return r.Owner + "/" + r.Name }

// ParseRepository extracts owner and name from a repository URL such as
// https://github.com/dotnet/runtime.git. It reports false for anything that
// is not an absolute URL on a host ending in github.com, or that has fewer
// than two path segments.
func ParseRepository(raw string) (Repository, bool) {
	if raw == "" {
		return Repository{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Repository{}, false
	}
	if !strings.HasSuffix(strings.ToLower(u.Hostname()), "github.com") {
		return Repository{}, false
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return Repository{}, false
	}
	name := strings.TrimSuffix(segments[1], ".git")
	if name == "" {
		return Repository{}, false
	}
	return Repository{Owner: segments[0], Name: name}, true
}
