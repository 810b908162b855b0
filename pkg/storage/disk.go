// Package storage abstracts the blob store behind a Disk interface.
//
// Three drivers:
//   - "local"  — local filesystem under a public root (default)
//   - "s3"     — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//   - memory   — in-process, for tests
//
// Every stored blob is addressable by a relative path and exposed through a
// fully-qualified public URL.
package storage

import (
	"fmt"
	"io"

	"github.com/dukaanlabs/dukaan/config"
)

// Disk is the blob store driver interface.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the blob at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a blob exists at path.
	Exists(path string) bool

	// Missing is the inverse of Exists.
	Missing(path string) bool

	// Size returns the byte size of the blob.
	Size(path string) (int64, error)

	// Delete removes a blob. Deleting an absent path is not an error.
	Delete(path string) error

	// URL returns the fully-qualified public URL for path.
	URL(path string) string

	// Files lists blob paths directly under directory (non-recursive).
	Files(directory string) ([]string, error)
}

// FromConfig builds the Disk named by STORAGE_DISK ("local" or "s3").
func FromConfig() (Disk, error) {
	switch name := config.StorageDisk(); name {
	case "local":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()), nil
	case "s3":
		return NewS3Disk(S3Config{
			Bucket:   config.S3Bucket(),
			Region:   config.S3Region(),
			Key:      config.S3Key(),
			Secret:   config.S3Secret(),
			Endpoint: config.S3Endpoint(),
			BaseURL:  config.S3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown STORAGE_DISK %q (supported: local, s3)", name)
	}
}
