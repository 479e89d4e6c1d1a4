package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/JustJay7/courtdle-api/internal/config"
)

// ErrNotFound is returned by Read when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Storage holds small whole-object documents such as the daily cache file.
type Storage interface {
	// Read opens the object stored under key.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Write replaces the object under key with data.
	Write(ctx context.Context, key string, data io.Reader) error

	// Delete removes the object; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// New creates the backend selected by STORAGE_TYPE.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch StorageType(cfg.StorageType) {
	case StorageTypeLocal:
		s, err := NewLocalStorage(cfg.StorageLocalPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StorageTypeS3:
		s, err := NewS3Storage(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// cleanKey normalizes a key and refuses ones that escape the storage root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
