// Package memory provides an in-process storage backend for tests and dry
// runs.
package memory

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ context.Context, _ storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return New(), nil
	})
}

type memFile struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Storage is a storage.Storage backed by a map. It is safe for concurrent use.
type Storage struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

var _ storage.Storage = (*Storage)(nil)

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{files: make(map[string]*memFile)}
}

// Bytes returns a copy of the object at p.
func (s *Storage) Bytes(p string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[p]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

// Paths returns every stored path, sorted.
func (s *Storage) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *Storage) Upload(ctx context.Context, p string, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return errors.Internal(err).WithDetail("path", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = &memFile{
		data:        data,
		contentType: mime.TypeByExtension(path.Ext(p)),
		modTime:     time.Now(),
	}
	return nil
}

func (s *Storage) Download(_ context.Context, p string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[p]
	if !ok {
		return nil, errors.NotFound("object", p)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (s *Storage) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, p)
	return nil
}

func (s *Storage) Exists(_ context.Context, p string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[p]
	return ok, nil
}

func (s *Storage) URL(_ context.Context, p string) (string, error) {
	return "mem://" + p, nil
}

func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []storage.FileInfo{}
	for p, f := range s.files {
		if strings.HasPrefix(p, prefix) {
			result = append(result, storage.FileInfo{
				Path:         p,
				Size:         int64(len(f.data)),
				LastModified: f.modTime,
				ContentType:  f.contentType,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}
