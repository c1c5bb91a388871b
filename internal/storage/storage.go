// Package storage persists uploaded and converted documents. The disk backend
// writes into a pre-existing upload directory; the MinIO backend writes into
// an S3-compatible bucket. Keys are flat stored names, never paths.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist in the backend.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that are empty or contain path separators.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Path         string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the document store used by the conversion pipeline.
type Storage interface {
	// Put stores the reader's content under key. Readers never observe a
	// partially written object under the final key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens an object for streaming alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Path returns the backend location of key (absolute file path or s3 URI).
	Path(key string) string
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
