// Package blob reads read-only configuration data (such as the pair catalog)
// from the local filesystem or an S3-compatible bucket.
package blob

import "context"

// Reader is a read-only object source.
type Reader interface {
	// Read retrieves the object at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}
