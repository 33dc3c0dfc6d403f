// Package storage uploads listing images to object storage.
package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"path"
	"time"

	"nestaway/internal/config"
)

// Object is a stored file: a public URL and the identifier used to manage it.
type Object struct {
	URL string
	ID  string
}

// ObjectStorage stores uploaded images.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (Object, error)
}

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewObjectKey names a listing image: <prefix>/property_<unixms>_<random>.jpg.
func NewObjectKey(prefix string, now time.Time) string {
	suffix := make([]byte, 6)
	limit := big.NewInt(int64(len(keyAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(err)
		}
		suffix[i] = keyAlphabet[n.Int64()]
	}
	name := fmt.Sprintf("property_%d_%s.jpg", now.UnixMilli(), suffix)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// New builds the ObjectStorage selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (ObjectStorage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "local", "":
		return NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
