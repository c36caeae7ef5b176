package main

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/cloudpitch/davbridge/internal/config"
	"github.com/cloudpitch/davbridge/internal/nextcloud"
	"github.com/cloudpitch/davbridge/internal/services"
)

// MockStore implements services.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, remotePath string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, remotePath, r, size, contentType)
	return args.Error(0)
}

func (m *MockStore) UploadFile(ctx context.Context, localPath, remotePath string) error {
	args := m.Called(ctx, localPath, remotePath)
	return args.Error(0)
}

func (m *MockStore) CreateDirectory(ctx context.Context, remotePath string) error {
	args := m.Called(ctx, remotePath)
	return args.Error(0)
}

func (m *MockStore) ListDirectory(ctx context.Context, remotePath string) ([]nextcloud.Entry, error) {
	args := m.Called(ctx, remotePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]nextcloud.Entry), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, remotePath string) (bool, error) {
	args := m.Called(ctx, remotePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) PublicURL(remotePath string) string {
	args := m.Called(remotePath)
	return args.String(0)
}

func testConfig() *config.Config {
	return &config.Config{
		ListenAddr:    ":8080",
		StorageDriver: config.DriverWebdav,
		MaxUploadSize: 100 * 1024 * 1024,
	}
}

// newTestServer builds the server with a test configuration and the given
// store.
func newTestServer(store services.Store) *echo.Echo {
	return newTestServerWithConfig(store, testConfig())
}

func newTestServerWithConfig(store services.Store, cfg *config.Config) *echo.Echo {
	return newServer(store, cfg)
}
