package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

// StorageInterface defines the object store used for documents and car images.
// Implemented by the local filesystem mock and by S3 (or any S3-compatible
// endpoint such as MinIO).
type StorageInterface interface {
	// PutObject uploads body under key. size may be -1 when unknown.
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// GeneratePresignedUploadURL generates a presigned URL for uploading
	GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL generates a presigned URL for downloading
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage. Missing files are not an error.
	DeleteFile(ctx context.Context, key string) error

	// ListFiles returns the keys under prefix in lexical order.
	ListFiles(ctx context.Context, prefix string) ([]string, error)

	// EnsureBucket creates the bucket (or root directory) if it is missing.
	EnsureBucket(ctx context.Context) error
}
