package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps uploads under a directory on disk. Used when no GCS
// bucket is configured.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Upload(_ context.Context, objectName string, _ string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *LocalStore) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.FromSlash(storedPath)))
}
