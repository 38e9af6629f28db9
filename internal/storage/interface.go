package storage

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

// DocumentStorage hands out presigned URLs for document blobs.
// The service layer only ever stores the key, never file bytes.
type DocumentStorage interface {
	// GeneratePresignedUploadURL returns a URL the client PUTs the file to.
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a short-lived URL for reading the file.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error
}
