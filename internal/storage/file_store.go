package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// FileStore keeps images as files named by token inside one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("image directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Store(_ context.Context, data []byte, _ string) (string, error) {
	token := newToken()
	if err := os.WriteFile(s.path(token), data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return token, nil
}

// Retrieve sniffs the content type from the stored bytes.
func (s *FileStore) Retrieve(_ context.Context, token string) ([]byte, string, error) {
	if !validToken(token) {
		return nil, "", ErrImageNotFound
	}
	data, err := os.ReadFile(s.path(token))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrImageNotFound
		}
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func (s *FileStore) Release(_ context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	if err := os.Remove(s.path(token)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *FileStore) path(token string) string {
	return filepath.Join(s.dir, token)
}
