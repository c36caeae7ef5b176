// Package services provides the storage drivers behind the HTTP API.
package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudpitch/davbridge/internal/config"
	"github.com/cloudpitch/davbridge/internal/nextcloud"
)

// Store is the set of remote-storage operations the handlers depend on.
// Implementations map them onto a concrete backend (WebDAV or S3).
type Store interface {
	// Upload writes the content of r to remotePath on the backend.
	Upload(ctx context.Context, remotePath string, r io.Reader, size int64, contentType string) error

	// UploadFile uploads a file from the local filesystem to remotePath.
	UploadFile(ctx context.Context, localPath, remotePath string) error

	// CreateDirectory creates the directory at remotePath. Creating a
	// directory that already exists is not an error.
	CreateDirectory(ctx context.Context, remotePath string) error

	// ListDirectory returns the immediate children of remotePath.
	ListDirectory(ctx context.Context, remotePath string) ([]nextcloud.Entry, error)

	// Delete removes the file or directory at remotePath. It reports
	// false without error when the target did not exist.
	Delete(ctx context.Context, remotePath string) (bool, error)

	// PublicURL returns the address where the stored file can be reached.
	PublicURL(remotePath string) string
}

// NewStore builds the Store selected by cfg.StorageDriver.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverWebdav:
		return newWebdavStore(cfg)
	case config.DriverS3:
		return newS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
