// Package storage keeps product images on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/ellsondrew-png/inventory-system-tml/internal/config"
	"github.com/google/uuid"
)

var (
	ErrNotConfigured    = errors.New("image_store_not_configured")
	ErrUnsupportedImage = errors.New("unsupported_image_type")
)

// ImageStore persists uploaded product images under generated keys.
type ImageStore interface {
	Put(ctx context.Context, filename, contentType string, r io.Reader) (key string, err error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// newKey returns products/<uuid><ext> for an accepted image filename.
func newKey(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExt[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	return path.Join("products", uuid.NewString()+ext), nil
}

// contentTypeFor falls back to the extension when the client sent none.
func contentTypeFor(key, contentType string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	return allowedExt[strings.ToLower(path.Ext(key))]
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, "/media/"), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown IMAGE_STORE %q", cfg.Backend)
	}
}
