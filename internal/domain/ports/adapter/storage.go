package adapter

import "context"

// ObjectStorage is the durable blob store boundary.
type ObjectStorage interface {
	// Put uploads bytes under path and returns a stable public URL.
	Put(ctx context.Context, path string, data []byte, contentType string) (publicURL string, err error)
}
