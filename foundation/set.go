package foundation

import (
	"context"
	"sync"

	"github.com/kbukum/sitekit/logger"
)

// Project is one member repository.
type Project struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// Source loads the member list.
type Source interface {
	Load(ctx context.Context) ([]Project, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Project, error)

func (f SourceFunc) Load(ctx context.Context) ([]Project, error) { return f(ctx) }

// Set is the foundation's member list. Matching is exact and case-sensitive
// on the (owner, name) pair.
type Set struct {
	source Source
	log    *logger.Logger

	mu      sync.RWMutex
	loaded  bool
	members map[Project]struct{}
}

// NewSet creates a Set that loads from source on the first Populate.
func NewSet(source Source, log *logger.Logger) *Set {
	if log == nil {
		log = logger.Nop()
	}
	return &Set{source: source, log: log.WithComponent("foundation")}
}

// Populate loads the member list unless it is already loaded. A failed load
// leaves the set empty and is retried by the next call.
func (s *Set) Populate(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	projects, err := s.source.Load(ctx)
	if err != nil {
		return err
	}
	s.members = make(map[Project]struct{}, len(projects))
	for _, p := range projects {
		s.members[p] = struct{}{}
	}
	s.loaded = true
	s.log.Info("foundation projects loaded", logger.Fields("projects", len(s.members)))
	return nil
}

// IsMember reports whether owner/name is a member. It is false until the
// set has been populated.
func (s *Set) IsMember(owner, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[Project{Owner: owner, Name: name}]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
