// Package blob defines the object-store abstraction backing the change
// journal, with filesystem, in-memory, and S3 implementations in
// subpackages.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a blob backend driver.
type Driver string

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem Driver = "fs"
	// DriverS3 is the S3-compatible driver.
	DriverS3 Driver = "s3"
	// DriverMemory is the in-memory test driver.
	DriverMemory Driver = "memory"
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = errors.New("operation not supported by blob driver")

// PutOptions configures a blob write.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes stored blob metadata.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	Metadata     map[string]string
	LastModified time.Time
}

// Store is the interface for blob storage backends. Put is create-only; keys
// are never overwritten in place.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
}
