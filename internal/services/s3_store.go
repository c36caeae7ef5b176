package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cloudpitch/davbridge/internal/config"
	"github.com/cloudpitch/davbridge/internal/metrics"
	"github.com/cloudpitch/davbridge/internal/nextcloud"
)

// s3Store serves Store operations from an S3-compatible bucket.
// Directories are represented as zero-byte objects whose key ends in "/".
type s3Store struct {
	client *minio.Client
	bucket string
}

func newS3Store(cfg *config.Config) (*s3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &s3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *s3Store) Upload(ctx context.Context, remotePath string, r io.Reader, size int64, contentType string) error {
	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucket, keyForPath(remotePath), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	metrics.ObserveStore(config.DriverS3, "upload", start, err)
	if err == nil {
		metrics.AddUploadBytes(size)
	}
	return err
}

func (s *s3Store) UploadFile(ctx context.Context, localPath, remotePath string) error {
	start := time.Now()
	err := s.uploadFile(ctx, localPath, remotePath)
	metrics.ObserveStore(config.DriverS3, "upload", start, err)
	return err
}

func (s *s3Store) uploadFile(ctx context.Context, localPath, remotePath string) error {
	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(localPath); err == nil {
		contentType = mtype.String()
	}
	_, err := s.client.FPutObject(ctx, s.bucket, keyForPath(remotePath), localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *s3Store) CreateDirectory(ctx context.Context, remotePath string) error {
	prefix := prefixForPath(remotePath)
	if prefix == "" {
		// The bucket root always exists.
		return nil
	}
	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucket, prefix, strings.NewReader(""), 0, minio.PutObjectOptions{})
	metrics.ObserveStore(config.DriverS3, "mkdir", start, err)
	return err
}

func (s *s3Store) ListDirectory(ctx context.Context, remotePath string) ([]nextcloud.Entry, error) {
	start := time.Now()
	entries, err := s.listDirectory(ctx, remotePath)
	metrics.ObserveStore(config.DriverS3, "list", start, err)
	return entries, err
}

func (s *s3Store) listDirectory(ctx context.Context, remotePath string) ([]nextcloud.Entry, error) {
	prefix := prefixForPath(remotePath)
	entries := []nextcloud.Entry{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Skip the marker object for the listed directory itself.
		if obj.Key == prefix {
			continue
		}
		entries = append(entries, entryFromObject(obj))
	}
	return entries, nil
}

func (s *s3Store) Delete(ctx context.Context, remotePath string) (bool, error) {
	start := time.Now()
	deleted, err := s.delete(ctx, remotePath)
	metrics.ObserveStore(config.DriverS3, "delete", start, err)
	return deleted, err
}

func (s *s3Store) delete(ctx context.Context, remotePath string) (bool, error) {
	key := keyForPath(remotePath)
	if key == "" {
		return false, fmt.Errorf("refusing to delete the bucket root")
	}

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return false, err
		}
		return true, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return false, err
	}

	// Not a plain object; remove everything stored under the key as a
	// directory, marker object included.
	deleted := false
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    key + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return deleted, obj.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return deleted, err
		}
		deleted = true
	}
	return deleted, nil
}

func (s *s3Store) PublicURL(remotePath string) string {
	u := *s.client.EndpointURL()
	u.Path = "/" + s.bucket + "/" + keyForPath(remotePath)
	return u.String()
}

// keyForPath maps an API path to an object key. The root maps to "".
func keyForPath(remotePath string) string {
	return strings.Trim(path.Clean("/"+remotePath), "/")
}

// prefixForPath maps an API path to a listing prefix ending in "/".
func prefixForPath(remotePath string) string {
	key := keyForPath(remotePath)
	if key == "" {
		return ""
	}
	return key + "/"
}

func entryFromObject(obj minio.ObjectInfo) nextcloud.Entry {
	key := strings.TrimSuffix(obj.Key, "/")
	name := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		name = key[i+1:]
	}
	return nextcloud.Entry{
		Name:        name,
		Path:        "/" + key,
		IsDir:       strings.HasSuffix(obj.Key, "/"),
		Size:        obj.Size,
		ModTime:     obj.LastModified,
		ETag:        strings.Trim(obj.ETag, `"`),
		ContentType: obj.ContentType,
	}
}
