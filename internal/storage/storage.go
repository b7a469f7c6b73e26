// Package storage keeps post image bytes outside the database. Posts only
// reference an image by its opaque token.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgaponov99/practicum-my-blog/internal/config"

	"github.com/google/uuid"
)

// ErrImageNotFound is returned when no image exists for a token.
var ErrImageNotFound = errors.New("image not found")

// ImageStore persists image payloads under generated tokens.
type ImageStore interface {
	// Store saves data and returns a new token for it.
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	// Retrieve returns the bytes and content type stored under token.
	Retrieve(ctx context.Context, token string) ([]byte, string, error)
	// Release removes the image. Releasing an unknown token is not an error.
	Release(ctx context.Context, token string) error
}

// New builds the ImageStore selected by IMAGE_STORE.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.ImageStore {
	case config.ImageStoreS3:
		return NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Endpoint)
	case config.ImageStoreFS, "":
		return NewFileStore(cfg.ImageDir)
	default:
		return nil, fmt.Errorf("unsupported image store %q", cfg.ImageStore)
	}
}

func newToken() string {
	return uuid.NewString()
}

func validToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}
