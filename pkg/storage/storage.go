package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	cloudstorage "cloud.google.com/go/storage"
)

// ObjectStorage is the boundary to the object store holding product images
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	SignedURL(key string, ttl time.Duration) (string, error)
}

// GCSStorage implements ObjectStorage on a Google Cloud Storage bucket
type GCSStorage struct {
	bucket *cloudstorage.BucketHandle
}

// NewGCSStorage creates a new GCSStorage
func NewGCSStorage(bucket *cloudstorage.BucketHandle) *GCSStorage {
	return &GCSStorage{bucket: bucket}
}

// Upload writes an object to the bucket
func (s *GCSStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, body); err != nil {
		writer.Close()
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return writer.Close()
}

// Delete removes an object from the bucket
func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && err != cloudstorage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a time-limited download URL for an object
func (s *GCSStorage) SignedURL(key string, ttl time.Duration) (string, error) {
	return s.bucket.SignedURL(key, &cloudstorage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
}
