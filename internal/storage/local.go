package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nestaway/internal/observability"
)

// MediaRoute is where the HTTP server exposes the local upload directory.
const MediaRoute = "/media"

// LocalStorage writes objects under a directory served at MediaRoute.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, publicBaseURL string) (*LocalStorage, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimRight(publicBaseURL, "/") + MediaRoute,
	}, nil
}

// Root is the directory holding stored objects.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Put(_ context.Context, key, _ string, data []byte) (Object, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return Object{}, fmt.Errorf("invalid object key %q", key)
	}
	dst := filepath.Join(s.root, clean)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		observability.ImageUploads.WithLabelValues(observability.ResultError).Inc()
		return Object{}, fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		observability.ImageUploads.WithLabelValues(observability.ResultError).Inc()
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	observability.ImageUploads.WithLabelValues(observability.ResultOK).Inc()
	return Object{URL: s.baseURL + "/" + filepath.ToSlash(clean), ID: filepath.ToSlash(clean)}, nil
}
