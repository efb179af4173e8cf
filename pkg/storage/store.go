package storage

import (
	"context"
	"io"
)

// PageSize is the default number of keys returned by a single
// KeysPrefix call when the caller does not set a count.
const PageSize = 1000

// ObjectInfo describes a stored object without fetching its content.
//
// Size is in bytes. ETag is empty when the backend does not provide one.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Store implementations know how to read and write objects on a
// K/V backend. Typically this is something file system-like.
// Examples are S3 and the local FS.
//
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Head(context.Context, string) (ObjectInfo, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader) error

	// KeysPrefix returns a page of objects under some prefix,
	// starting at a continuation token, plus the token for the next
	// page. An empty next token means the listing is exhausted.
	KeysPrefix(ctx context.Context, token, prefix string, count int) ([]ObjectInfo, string, error)
}
