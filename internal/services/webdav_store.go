package services

import (
	"context"
	"io"
	"time"

	"github.com/cloudpitch/davbridge/internal/config"
	"github.com/cloudpitch/davbridge/internal/metrics"
	"github.com/cloudpitch/davbridge/internal/nextcloud"
)

// webdavStore serves Store operations from a Nextcloud WebDAV endpoint.
type webdavStore struct {
	client *nextcloud.Client
}

func newWebdavStore(cfg *config.Config) (*webdavStore, error) {
	client, err := nextcloud.New(nextcloud.Config{
		BaseURL:     cfg.NextcloudURL,
		Username:    cfg.NextcloudUsername,
		Password:    cfg.NextcloudPassword,
		Timeout:     cfg.RequestTimeout,
		UseEnvProxy: cfg.UseEnvProxy,
	})
	if err != nil {
		return nil, err
	}
	return &webdavStore{client: client}, nil
}

func (s *webdavStore) Upload(ctx context.Context, remotePath string, r io.Reader, size int64, contentType string) error {
	start := time.Now()
	err := s.client.Upload(ctx, remotePath, r, size, contentType)
	metrics.ObserveStore(config.DriverWebdav, "upload", start, err)
	if err == nil {
		metrics.AddUploadBytes(size)
	}
	return err
}

func (s *webdavStore) UploadFile(ctx context.Context, localPath, remotePath string) error {
	start := time.Now()
	err := s.client.UploadFile(ctx, localPath, remotePath)
	metrics.ObserveStore(config.DriverWebdav, "upload", start, err)
	return err
}

func (s *webdavStore) CreateDirectory(ctx context.Context, remotePath string) error {
	start := time.Now()
	err := s.client.CreateDirectory(ctx, remotePath)
	metrics.ObserveStore(config.DriverWebdav, "mkdir", start, err)
	return err
}

func (s *webdavStore) ListDirectory(ctx context.Context, remotePath string) ([]nextcloud.Entry, error) {
	start := time.Now()
	entries, err := s.client.ListDirectory(ctx, remotePath)
	metrics.ObserveStore(config.DriverWebdav, "list", start, err)
	return entries, err
}

func (s *webdavStore) Delete(ctx context.Context, remotePath string) (bool, error) {
	start := time.Now()
	deleted, err := s.client.Delete(ctx, remotePath)
	metrics.ObserveStore(config.DriverWebdav, "delete", start, err)
	return deleted, err
}

func (s *webdavStore) PublicURL(remotePath string) string {
	return s.client.BuildURL(remotePath)
}
