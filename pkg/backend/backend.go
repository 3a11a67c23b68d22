package backend

import (
	"context"
	"io"
	"strings"
)

// Backend stores and fetches documents by path.
type Backend interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Put(ctx context.Context, path string, openBody func() (io.ReadCloser, error), contentType string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// ContentType returns the media type for a document path, taking the
// compression suffix into account.
func ContentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(path, ".zst"):
		return "application/zstd"
	default:
		return "application/json"
	}
}
