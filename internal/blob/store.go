// Package blob keeps uploaded documents on local disk and serves them under
// a public URL prefix.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"coop-intake-go/pkg/textnorm"
)

const RoutePrefix = "/files/"

var (
	ErrTooLarge = errors.New("file exceeds upload limit")
	ErrNotFound = errors.New("file not found")
	ErrEmpty    = errors.New("file is empty")
)

type Object struct {
	Key      string
	URL      string
	Filename string
	Size     int64
}

type Store struct {
	dir      string
	baseURL  string
	maxBytes int64

	initOnce sync.Once
	initErr  error
}

// NewLocalStore does not touch the disk; the directory is created on first write.
func NewLocalStore(dir, publicBaseURL string, maxBytes int64) *Store {
	return &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (s *Store) ensureDir() error {
	s.initOnce.Do(func() {
		s.initErr = os.MkdirAll(s.dir, 0o755)
	})
	return s.initErr
}

// Save stores r under prefix and returns the object's public URL.
func (s *Store) Save(ctx context.Context, prefix, filename string, r io.Reader) (*Object, error) {
	if err := s.ensureDir(); err != nil {
		return nil, fmt.Errorf("prepare blob dir: %w", err)
	}

	name := SanitizeFilename(filename)
	key := path.Join(SanitizeFilename(prefix), fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), uuid.NewString()[:8], name))
	diskPath := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(diskPath), 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	dst, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}

	limit := s.maxBytes
	reader := r
	if limit > 0 {
		reader = io.LimitReader(r, limit+1)
	}
	size, copyErr := io.Copy(dst, reader)
	closeErr := dst.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(diskPath)
		return nil, fmt.Errorf("write blob: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(diskPath)
		return nil, fmt.Errorf("close blob: %w", closeErr)
	case limit > 0 && size > limit:
		_ = os.Remove(diskPath)
		return nil, ErrTooLarge
	case size == 0:
		_ = os.Remove(diskPath)
		return nil, ErrEmpty
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(diskPath)
		return nil, err
	}

	return &Object{Key: key, URL: s.URL(key), Filename: name, Size: size}, nil
}

func (s *Store) URL(key string) string {
	return s.baseURL + RoutePrefix + key
}

// Owns reports whether url points into this store.
func (s *Store) Owns(url string) bool {
	return strings.HasPrefix(url, s.baseURL+RoutePrefix)
}

func (s *Store) ReadURL(ctx context.Context, url string) ([]byte, error) {
	if !s.Owns(url) {
		return nil, ErrNotFound
	}
	diskPath, ok := s.resolve(strings.TrimPrefix(url, s.baseURL+RoutePrefix))
	if !ok {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(diskPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes the object behind url. Missing files are not an error.
func (s *Store) Delete(url string) error {
	if !s.Owns(url) {
		return nil
	}
	diskPath, ok := s.resolve(strings.TrimPrefix(url, s.baseURL+RoutePrefix))
	if !ok {
		return nil
	}
	if err := os.Remove(diskPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Handler serves stored files. Directory listings are not exposed.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, RoutePrefix)
		diskPath, ok := s.resolve(key)
		if !ok {
			http.NotFound(w, r)
			return
		}
		info, err := os.Stat(diskPath)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeFile(w, r, diskPath)
	})
}

func (s *Store) resolve(key string) (string, bool) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" {
		return "", false
	}
	return filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), true
}

// SanitizeFilename keeps ASCII letters, digits, dot, dash and underscore.
func SanitizeFilename(name string) string {
	name = textnorm.StripDiacritics(filepath.Base(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	result := strings.Trim(b.String(), ".")
	if result == "" {
		return "file"
	}
	return result
}
