// Package blob stores uploaded binary objects (national ID scans, profile
// photos) and returns stable URLs for them.
package blob

import (
	"context"
	"io"
)

// Store persists uploaded objects under a key and returns an addressable URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}
